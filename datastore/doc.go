/*
Package datastore defines the storage backend contract for the itemstore
library.

A backend implements four operations: queryable construction, query
execution, point read and atomic batch save. The batch save contract is the
heart of it: slots are attempted strictly in order, the first failure stops
the attempt, and a failing batch must leave the store exactly as it was.

Implementations:
  - memory: the reference in-memory backend, also the conformance
    implementation for the contract's atomicity and concurrency rules
  - ddb: DynamoDB adapter using a single-table layout and transactional
    writes
*/
package datastore
