/*
Package storagemodels defines the data model shared between providers and
storage backends: the base item every stored entity embeds, the audit event
and property-change records, the batch save request/result pair, the
queryable pipeline and the per-type schema descriptor.

The package is deliberately dependency-light; it sits at the bottom of the
import graph so both the provider layer and backend adapters can consume it.
*/
package storagemodels
