package middleware

import (
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/caseweave/backend/pkg/ai"
	"github.com/caseweave/backend/pkg/extract"
	"github.com/caseweave/backend/pkg/history"
	"github.com/caseweave/backend/pkg/loader/web"
	"github.com/caseweave/backend/pkg/store"
)

// App bundles the session-scoped collaborators every handler needs: the
// authoritative network store, the history tracker observing it, the
// extraction service, the web loader and the AI client.
//
// ImportMu serializes the read-resolve-replace sequence of import, extract
// and discover handlers so a merge is applied as one atomic step and no
// partial merge is ever observable.
type App struct {
	Store     *store.NetworkStore
	History   *history.Tracker
	Extractor *extract.Service
	Web       *web.Loader
	AiClient  ai.NetworkAIClient
	APIKey    string

	ImportMu sync.Mutex
}

// AppContext is the echo context extended with the application state.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware wraps every request context with the shared App.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app})
		}
	}
}
