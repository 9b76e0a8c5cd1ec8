// Package catalog holds the fixed GraphQL query documents sent to the Healthie API,
// keyed by stream name.
//
// Documents are opaque to this package: they are neither parsed nor validated, only
// looked up and passed through to the client.
package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownStream is matched by every UnknownStreamError via errors.Is.
var ErrUnknownStream = errors.New("unknown stream")

// UnknownStreamError is returned when a stream name has no registered query.
type UnknownStreamError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownStreamError) Error() string {
	return fmt.Sprintf("unknown stream %q", e.Name)
}

// Is reports whether target is ErrUnknownStream.
func (e *UnknownStreamError) Is(target error) bool {
	return target == ErrUnknownStream
}

// QueryDefinition is a named GraphQL document and the variables it declares.
type QueryDefinition struct {
	// Name is the stream name the query is registered under.
	Name string

	// Document is the GraphQL query text, sent verbatim.
	Document string

	// Variables are the variable names declared by Document, without the "$".
	Variables []string
}

// Declares reports whether the document declares the named variable.
func (q QueryDefinition) Declares(variable string) bool {
	return slices.Contains(q.Variables, variable)
}

// CurrentUser is the zero-argument query used to validate credentials.
var CurrentUser = QueryDefinition{
	Name:     "currentUser",
	Document: currentUserDocument,
}

// Stream names.
const (
	Users                                = "Users"
	AppointmentTypes                     = "AppointmentTypes"
	Appointments                         = "Appointments"
	AvailableItemTypes                   = "AvailableItemTypes"
	Conversations                        = "Conversations"
	FormCompletionRequests               = "FormCompletionRequests"
	Forms                                = "Forms"
	OnboardingFlows                      = "OnboardingFlows"
	OrganizationMembers                  = "OrganizationMembers"
	Programs                             = "Programs"
	UnassociatedCompletedOnboardingItems = "UnassociatedCompletedOnboardingItems"
)

var queries = []QueryDefinition{
	{
		Name:     Users,
		Document: usersDocument,
		Variables: []string{
			"offset", "keywords", "sort_by", "active_status", "group_id",
			"show_all_by_default", "should_paginate", "provider_id",
			"conversation_id", "limited_to_provider",
		},
	},
	{
		Name:     AppointmentTypes,
		Document: appointmentTypesDocument,
		Variables: []string{
			"offset", "should_paginate", "page_size", "keywords", "show_group",
			"provider_id", "clients_can_book", "appointment_type_ids",
			"with_deleted_appt_types",
		},
	},
	{
		Name:     Appointments,
		Document: appointmentsDocument,
		Variables: []string{
			"user_id", "filter", "sort_by", "should_paginate", "offset",
			"is_active", "with_all_statuses",
		},
	},
	{
		Name:      AvailableItemTypes,
		Document:  availableItemTypesDocument,
		Variables: []string{"onboarding_flow_id"},
	},
	{
		Name:     Conversations,
		Document: conversationsDocument,
		Variables: []string{
			"offset", "keywords", "active_status", "client_id", "read_status",
			"conversation_type", "provider_id",
		},
	},
	{
		Name:      FormCompletionRequests,
		Document:  formCompletionRequestsDocument,
		Variables: []string{"userId", "keywords", "status"},
	},
	{
		Name:     Forms,
		Document: formsDocument,
		Variables: []string{
			"include_default_templates", "active_status", "should_paginate",
			"category", "keywords", "offset", "sortBy",
		},
	},
	{
		Name:      OnboardingFlows,
		Document:  onboardingFlowsDocument,
		Variables: []string{"offset", "keywords", "sort_by", "should_paginate"},
	},
	{
		Name:     OrganizationMembers,
		Document: organizationMembersDocument,
		Variables: []string{
			"offset", "keywords", "sort_by", "licensed_in_state", "conversation_id",
		},
	},
	{
		Name:     Programs,
		Document: programsDocument,
		Variables: []string{
			"offset", "keywords", "course_type", "should_paginate", "only_available",
		},
	},
	{
		Name:      UnassociatedCompletedOnboardingItems,
		Document:  unassociatedCompletedOnboardingItemsDocument,
		Variables: []string{"user_id"},
	},
}

var byName = func() map[string]QueryDefinition {
	m := make(map[string]QueryDefinition, len(queries))
	for _, q := range queries {
		m[q.Name] = q
	}
	return m
}()

// Get returns the query registered for a stream name.
// Returns an *UnknownStreamError and a zero QueryDefinition if none is registered.
func Get(name string) (QueryDefinition, error) {
	q, ok := byName[name]
	if !ok {
		return QueryDefinition{}, &UnknownStreamError{Name: name}
	}
	q.Variables = slices.Clone(q.Variables)
	return q, nil
}

// Names returns the registered stream names in registration order.
func Names() []string {
	names := make([]string, 0, len(queries))
	for _, q := range queries {
		names = append(names, q.Name)
	}
	return names
}
