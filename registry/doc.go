/*
Package registry holds process-wide associations consulted by backend
adapters: type schemas, which map item fields onto storage attribute names
and conversion strategies, and transformers, which perform those
conversions for fields marked with the encrypt strategy.

Registrations normally happen in init functions or early in main, before
any provider is constructed:

	func init() {
	    _ = registry.RegisterSchema[Message](&storagemodels.TypeSchema{
	        TypeName: "message",
	        Fields: []storagemodels.SchemaField{
	            {FieldName: "message", StorageName: "body"},
	        },
	    })
	}
*/
package registry
