package checkout

import (
	"github.com/invopop/jsonschema"
)

// ShippingFormSchema describes OrderForm as a JSON Schema document.
func ShippingFormSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}

	schema := reflector.Reflect(&OrderForm{})
	schema.Title = "Shipping details"
	schema.Description = "Collected after payment to ship a custom coloring book"
	return schema
}
