package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/clinicdesk/internal/config"
	"github.com/jask/clinicdesk/internal/database"
	"github.com/jask/clinicdesk/internal/database/repository"
	"github.com/jask/clinicdesk/internal/logging"
	"github.com/jask/clinicdesk/internal/prefs"
	"github.com/jask/clinicdesk/internal/service"
	"github.com/jask/clinicdesk/internal/theme"
	"github.com/jask/clinicdesk/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closer, err := logging.OpenFile(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closer.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	// theme preference lives beside the config, keyed like the mobile app
	var themeStore theme.KV
	if p, err := prefs.Default(); err == nil {
		themeStore = p
	} else {
		logger.WithComponent("theme").WithError(err).Warn("prefs unavailable")
	}
	fallback, _ := theme.ParseMode(cfg.UI.Theme)
	themes := theme.NewManager(themeStore, fallback, logger.WithComponent("theme"))

	// services
	worklist := &service.Worklist{
		TestRequests:        repository.NewTestRequestRepo(db),
		AppointmentRequests: repository.NewAppointmentRequestRepo(db),
		Log:                 logger,
	}
	schedule := &service.Schedule{Appointments: repository.NewAppointmentRepo(db)}
	profile := &service.ProfileService{Patients: repository.NewPatientRepo(db), Documents: repository.NewDocumentRepo(db)}
	maintenance := &service.MaintenanceService{DB: db}

	loc, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		logger.WithError(err).Warn("using local timezone")
		loc = time.Local
	}

	logger.WithField("role", cfg.UI.Role).Info("starting")
	p := tea.NewProgram(tui.New(ctx, cfg, tui.Deps{
		Worklist:    worklist,
		Schedule:    schedule,
		Profile:     profile,
		Maintenance: maintenance,
		Theme:       themes,
		Log:         logger,
	}, loc), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
