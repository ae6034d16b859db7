// Package seed loads sample people from YAML and writes them through the
// person service.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/alimgiray/peoplebase/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed people.yaml
var defaultPeople []byte

type file struct {
	People []models.PersonInput `yaml:"people"`
}

// Parse decodes a seed document
func Parse(data []byte) ([]models.PersonInput, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if len(f.People) == 0 {
		return nil, errors.New("seed data has no people")
	}
	return f.People, nil
}

// Default returns the built-in sample people
func Default() ([]models.PersonInput, error) {
	return Parse(defaultPeople)
}

// LoadFile reads seed data from path
func LoadFile(path string) ([]models.PersonInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Store is what the seeder needs from services.PersonService
type Store interface {
	CreatePerson(ctx context.Context, input models.PersonInput) (*models.Person, error)
	DeleteAllPeople(ctx context.Context) (int64, error)
}

// Failure is one person that could not be created
type Failure struct {
	Input models.PersonInput
	Err   error
}

type Report struct {
	Deleted int64
	Created []*models.Person
	Failed  []Failure
}

// Run optionally empties the table, then creates every person. A person that
// fails validation or collides on email is recorded and skipped.
func Run(ctx context.Context, store Store, people []models.PersonInput, reset bool) (*Report, error) {
	report := &Report{}

	if reset {
		n, err := store.DeleteAllPeople(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to clear people: %w", err)
		}
		report.Deleted = n
	}

	for _, input := range people {
		person, err := store.CreatePerson(ctx, input)
		if err != nil {
			if models.KindOf(err) == models.KindInternal {
				return report, err
			}
			report.Failed = append(report.Failed, Failure{Input: input, Err: err})
			continue
		}
		report.Created = append(report.Created, person)
	}

	return report, nil
}
