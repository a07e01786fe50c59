// Package match hosts games for the server: it creates records, serializes
// every operation on a record and publishes the changes to watchers.
package match
