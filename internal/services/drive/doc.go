// Package drive talks to the cloud file store and document store: searching
// files by a query expression, downloading file bytes, creating documents in
// a folder, and inserting their text. Authentication rides on an oauth2
// transport built from a bearer token.
package drive
