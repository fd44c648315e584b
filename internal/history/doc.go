// package history provides the local publish history store.
//
// Every committed publish is recorded in a SQLite database so past runs can
// be listed and exported without touching the publishing API.
package history
