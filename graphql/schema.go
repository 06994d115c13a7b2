// Package graphql provides the GraphQL schema definition and resolvers
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/kevwatch/kevwatch/store"
	"github.com/kevwatch/kevwatch/util"
)

// VulnerabilityType defines the GraphQL object for KEV records. Field names
// match the struct json tags, so the default resolver covers them.
var VulnerabilityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Vulnerability",
	Fields: graphql.Fields{
		"cveID":                      &graphql.Field{Type: graphql.String},
		"vendorProject":              &graphql.Field{Type: graphql.String},
		"product":                    &graphql.Field{Type: graphql.String},
		"vulnerabilityName":          &graphql.Field{Type: graphql.String},
		"dateAdded":                  &graphql.Field{Type: graphql.String},
		"shortDescription":           &graphql.Field{Type: graphql.String},
		"requiredAction":             &graphql.Field{Type: graphql.String},
		"dueDate":                    &graphql.Field{Type: graphql.String},
		"knownRansomwareCampaignUse": &graphql.Field{Type: graphql.String},
		"notes":                      &graphql.Field{Type: graphql.String},
		"cwes":                       &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

// CatalogInfoType defines the GraphQL object for catalog release metadata
var CatalogInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CatalogInfo",
	Fields: graphql.Fields{
		"title":          &graphql.Field{Type: graphql.String},
		"catalogVersion": &graphql.Field{Type: graphql.String},
		"dateReleased":   &graphql.Field{Type: graphql.String},
		"count":          &graphql.Field{Type: graphql.Int},
		"catalogHash":    &graphql.Field{Type: graphql.String},
		"dbHash":         &graphql.Field{Type: graphql.String},
	},
})

// NewSchema builds the query schema over the given store. Resolvers close
// over the store and compile their arguments to parameterized Filter values.
func NewSchema(st store.Store) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"vulnerabilities": &graphql.Field{
				Type:        graphql.NewList(VulnerabilityType),
				Description: "KEV records filtered by CVE pattern, vendor and year",
				Args: graphql.FieldConfigArgument{
					"cve":    &graphql.ArgumentConfig{Type: graphql.String},
					"vendor": &graphql.ArgumentConfig{Type: graphql.String},
					"year":   &graphql.ArgumentConfig{Type: graphql.String},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := store.Filter{}
					if cve, ok := p.Args["cve"].(string); ok {
						filter.CveID = cve
					}
					if vendor, ok := p.Args["vendor"].(string); ok {
						filter.Vendor = vendor
					}
					if year, ok := p.Args["year"].(string); ok && year != "" {
						since, until, err := util.YearRange(year)
						if err != nil {
							return nil, err
						}
						filter.SinceDate = since
						filter.UntilDate = until
					}
					if limit, ok := p.Args["limit"].(int); ok {
						filter.Limit = limit
					}
					return st.Query(p.Context, filter)
				},
			},
			"vulnerability": &graphql.Field{
				Type:        VulnerabilityType,
				Description: "A single KEV record by exact CVE ID",
				Args: graphql.FieldConfigArgument{
					"cveID": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					cveID, _ := p.Args["cveID"].(string)
					records, err := st.Query(p.Context, store.Filter{CveID: cveID})
					if err != nil {
						return nil, err
					}
					for _, r := range records {
						if r.CveID == util.NormalizeCVEPattern(cveID) {
							return r, nil
						}
					}
					return nil, nil
				},
			},
			"catalog": &graphql.Field{
				Type:        CatalogInfoType,
				Description: "Release metadata of the stored catalog",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					info, ok, err := st.LoadCatalogInfo(p.Context)
					if err != nil {
						return nil, err
					}
					if !ok {
						return nil, nil
					}
					return info, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}
