package cli

import (
	calendarApp "github.com/felixgeelhaar/dayblock/internal/calendar/application"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/application/services"
)

// App holds the CLI application dependencies.
type App struct {
	Schedule    *services.ScheduleService
	Coordinator *calendarApp.SyncCoordinator

	// DefaultCalendarID is used when a command links a block without
	// naming a calendar explicitly.
	DefaultCalendarID string
}

var app *App

// SetApp sets the global application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global application instance.
func GetApp() *App {
	return app
}
