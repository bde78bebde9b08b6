// Package sqlerr translates Postgres errors into errs.HTTPError values:
// constraint violations become 400s with readable messages, missing rows
// become 404s named after the table.
package sqlerr
