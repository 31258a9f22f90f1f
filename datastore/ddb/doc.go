/*
Package ddb provides a DynamoDB-backed datastore backend.

All item types share one table. The primary key is
(pk, sk) = (partitionKey, typeName#id) and items of a type are queried
through a GSI keyed by typeName. Batches are committed with
TransactWriteItems so a batch either lands whole or not at all; optimistic
concurrency is enforced with condition expressions over the etag attribute.

Per-type schemas registered with the registry package control how item
fields map onto table attributes, including storage-name renames and
transform strategies for sensitive fields.
*/
package ddb
