package catalog

import "github.com/kevwatch/kevwatch/model"

// Transform normalizes a raw feed payload into catalog metadata plus an
// ordered record list. It is pure: missing top-level fields become zero
// values and a nil or empty payload yields empty results, never an error.
//
// Every record keeps its own full field set from the typed decode, so a
// field absent from the first record is never dropped catalog-wide.
func Transform(raw *model.RawCatalog) (model.CatalogInfo, []model.Vulnerability) {
	info := model.CatalogInfo{ObjType: "CatalogInfo"}
	if raw == nil {
		return info, nil
	}

	info.Title = raw.Title
	info.CatalogVersion = raw.CatalogVersion
	info.DateReleased = raw.DateReleased
	info.Count = raw.Count

	if len(raw.Vulnerabilities) == 0 {
		return info, nil
	}

	records := make([]model.Vulnerability, 0, len(raw.Vulnerabilities))
	for _, v := range raw.Vulnerabilities {
		v.ObjType = "Vulnerability"
		records = append(records, v)
	}

	return info, records
}
