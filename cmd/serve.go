package cmd

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/graphql-go/graphql"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gqlschema "github.com/kevwatch/kevwatch/graphql"
	"github.com/kevwatch/kevwatch/model"
	"github.com/kevwatch/kevwatch/notify"
	"github.com/kevwatch/kevwatch/store"
	"github.com/kevwatch/kevwatch/watcher"
)

// VulnerabilityListResponse returns the result of vulnerability queries
type VulnerabilityListResponse struct {
	Success         bool                  `json:"success"`
	Count           int                   `json:"count"`
	Vulnerabilities []model.Vulnerability `json:"vulnerabilities"`
}

// SyncResponse reports the outcome of a manually triggered sync cycle
type SyncResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	NewKEVs []model.Vulnerability `json:"new_kevs,omitempty"`
}

// ErrorResponse is the generic failure body
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var servePort string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the KEV REST and GraphQL API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		engine := newEngine(st)
		notifier := notify.NewNotifier(cfg.FetchTimeout(), logger)

		schema, err := gqlschema.NewSchema(st)
		if err != nil {
			return err
		}

		app := fiber.New(fiber.Config{
			AppName:     "kevwatch API v1.0",
			ReadTimeout: time.Second * 30,
		})

		// Middleware
		app.Use(fiberrecover.New())
		app.Use(fiberlogger.New())
		app.Use(cors.New())

		// Health check endpoint
		app.Get("/", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"status": "healthy",
			})
		})

		api := app.Group("/api/v1")
		api.Get("/vulnerabilities", listVulnerabilitiesHandler(st))
		api.Get("/catalog", catalogInfoHandler(st))
		api.Post("/sync", syncHandler(engine, notifier))
		api.Post("/graphql", graphQLHandler(schema))

		if servePort == "" {
			servePort = cfg.Port
		}

		logger.Info("Starting server", zap.String("port", servePort))
		return app.Listen(":" + servePort)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")
}

// listVulnerabilitiesHandler handles GET requests for filtered KEV listings
func listVulnerabilitiesHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := buildFilter(
			c.Query("cve"),
			c.Query("vendor"),
			c.Query("year"),
			c.Query("limit", "10"),
		)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Success: false,
				Message: err.Error(),
			})
		}

		records, err := st.Query(c.Context(), filter)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Success: false,
				Message: "Failed to query vulnerabilities: " + err.Error(),
			})
		}

		return c.JSON(VulnerabilityListResponse{
			Success:         true,
			Count:           len(records),
			Vulnerabilities: records,
		})
	}
}

// catalogInfoHandler handles GET requests for the catalog metadata
func catalogInfoHandler(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, ok, err := st.LoadCatalogInfo(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Success: false,
				Message: "Failed to load catalog metadata: " + err.Error(),
			})
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Success: false,
				Message: "No catalog metadata stored yet",
			})
		}
		return c.JSON(info)
	}
}

// syncHandler handles POST requests that trigger one sync cycle plus
// webhook notification for any newly added records
func syncHandler(engine *watcher.Engine, notifier *notify.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		newRecords, err := engine.SyncOnce(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(SyncResponse{
				Success: false,
				Message: "Sync cycle failed: " + err.Error(),
			})
		}

		if len(newRecords) == 0 {
			return c.JSON(SyncResponse{
				Success: true,
				Message: "No new KEVs detected",
			})
		}

		sinks := notify.LoadWebhooks(cfg.WebhookFile, logger)
		notifier.Send(c.Context(), newRecords, sinks)

		return c.JSON(SyncResponse{
			Success: true,
			Message: "Sync completed",
			NewKEVs: newRecords,
		})
	}
}

// graphQLHandler handles GraphQL requests
func graphQLHandler(schema graphql.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params struct {
			Query         string                 `json:"query"`
			OperationName string                 `json:"operationName"`
			Variables     map[string]interface{} `json:"variables"`
		}

		if err := c.BodyParser(&params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": []map[string]interface{}{
					{
						"message": "Invalid request body",
					},
				},
			})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  params.Query,
			VariableValues: params.Variables,
			OperationName:  params.OperationName,
			Context:        c.Context(),
		})

		if len(result.Errors) > 0 {
			logger.Warn("GraphQL errors", zap.Any("errors", result.Errors))
		}

		return c.JSON(result)
	}
}
