// Package schema describes the entities a filter can be compiled against.
//
// Schemas are written in CUE:
//
//	entity: User: {
//		table:         "users"
//		discriminator: "kind"
//		field: {
//			id:       {type: "string"}
//			status:   {type: "string"}
//			owner_id: {type: "string", nullable: true}
//			active:   {type: "bool"}
//		}
//		relation: owner: {target: "Account", local_key: "owner_id"}
//	}
//
// Lookups of unknown entities, fields or relations return *LookupError.
// The filter compiler passes these through untouched, so callers can test
// for them with IsNotFound.
package schema
