package cli

import (
	"github.com/namastexlabs/genie/internal/core"
	"github.com/namastexlabs/genie/internal/observability"
	"github.com/namastexlabs/genie/internal/storage"
	"github.com/namastexlabs/genie/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Cfg      *models.Config

	Store       storage.WishStore
	Cards       storage.TaskCardIndex
	Transitions core.TransitionEngine
	Resolver    core.RefResolver

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
	Notifier    observability.Notifier
)
