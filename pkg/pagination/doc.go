// Package pagination implements offset-based continuation for Healthie GraphQL queries.
//
// The API pages by offset: a request carries the number of records already read,
// and an empty result list marks the end. Some queries default to returning
// everything unless they are also sent should_paginate: true.
//
// Example usage:
//
//	for page, err := range pagination.Pages(ctx, pagination.ModeOffset, fetch) {
//		if err != nil {
//			return err
//		}
//		process(page.Records)
//	}
//
// Pages is sequential and lazy: one request per pull, nothing is fetched ahead.
// Short pages are not treated as the last page, so a paginated query always ends
// with one request that returns no records.
package pagination
