package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/alimgiray/peoplebase/internal/repositories"
	"github.com/alimgiray/peoplebase/internal/seed"
	"github.com/alimgiray/peoplebase/internal/services"
	"github.com/alimgiray/peoplebase/pkg/config"
	"github.com/alimgiray/peoplebase/pkg/database"
	"github.com/alimgiray/peoplebase/pkg/logger"
	"github.com/fatih/color"
)

func main() {
	file := flag.String("file", "", "YAML file with people to load (defaults to the built-in sample)")
	reset := flag.Bool("reset", true, "delete every person before seeding")
	flag.Parse()

	if err := run(*file, *reset); err != nil {
		color.Red("Seeding failed: %v", err)
		os.Exit(1)
	}
}

func run(file string, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Log.Level, os.Stderr)

	var people []models.PersonInput
	if file != "" {
		people, err = seed.LoadFile(file)
	} else {
		people, err = seed.Default()
	}
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := services.NewPersonService(repositories.NewPersonRepository(db), nil, log)

	report, err := seed.Run(context.Background(), svc, people, reset)
	if err != nil {
		return err
	}

	if reset {
		color.Yellow("Cleared %d existing people", report.Deleted)
	}
	green := color.New(color.FgGreen).SprintFunc()
	for _, p := range report.Created {
		fmt.Printf("%s %s <%s>\n", green("+"), p.Name, p.Email)
	}
	red := color.New(color.FgRed).SprintFunc()
	for _, f := range report.Failed {
		fmt.Printf("%s %s <%s>: %v\n", red("!"), f.Input.Name, f.Input.Email, f.Err)
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d people were not created", len(report.Failed), len(people))
	}
	color.Green("Database seeded successfully!")
	return nil
}
