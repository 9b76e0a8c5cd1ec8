// Package streams binds the Healthie query catalog to the pagination loop and exposes
// each record stream as a lazily iterated Sync.
package streams

import (
	"fmt"

	"github.com/Sternrassler/healthie-source/pkg/catalog"
	"github.com/Sternrassler/healthie-source/pkg/extract"
	"github.com/Sternrassler/healthie-source/pkg/pagination"
)

// Definition describes one record stream: the query it sends, where its records sit
// in the response and how it continues after the first page.
type Definition struct {
	Name  string
	Query catalog.QueryDefinition
	Path  extract.FieldPath
	Mode  pagination.Mode
}

// Validate checks that the query declares every variable the mode sends.
func (d Definition) Validate() error {
	if d.Name != d.Query.Name {
		return fmt.Errorf("stream %s: bound to query %q", d.Name, d.Query.Name)
	}
	if d.Path.Field == "" {
		return fmt.Errorf("stream %s: empty response field", d.Name)
	}
	for name := range pagination.Start(d.Mode).Variables(d.Mode) {
		if !d.Query.Declares(name) {
			return fmt.Errorf("stream %s: mode %s sends $%s which the query does not declare", d.Name, d.Mode, name)
		}
	}
	return nil
}

func define(name, field string, mode pagination.Mode) Definition {
	q, err := catalog.Get(name)
	if err != nil {
		panic(err)
	}
	return Definition{
		Name:  name,
		Query: q,
		Path:  extract.FieldPath{Field: field},
		Mode:  mode,
	}
}

// Definitions lists every stream in catalog order.
var Definitions = []Definition{
	define(catalog.Users, "users", pagination.ModeOffset),
	define(catalog.AppointmentTypes, "appointmentTypes", pagination.ModeOffsetPaginate),
	define(catalog.Appointments, "appointments", pagination.ModeOffsetPaginate),
	func() Definition {
		d := define(catalog.AvailableItemTypes, "availableItemTypes", pagination.ModeNone)
		d.Path.StringEncoded = true
		return d
	}(),
	define(catalog.Conversations, "conversationMemberships", pagination.ModeOffset),
	define(catalog.FormCompletionRequests, "requestedFormCompletions", pagination.ModeNone),
	define(catalog.Forms, "customModuleForms", pagination.ModeOffsetPaginate),
	define(catalog.OnboardingFlows, "onboardingFlows", pagination.ModeOffsetPaginate),
	define(catalog.OrganizationMembers, "organizationMembers", pagination.ModeOffset),
	define(catalog.Programs, "courses", pagination.ModeOffsetPaginate),
	define(catalog.UnassociatedCompletedOnboardingItems, "unassociatedCompletedOnboardingItems", pagination.ModeNone),
}
