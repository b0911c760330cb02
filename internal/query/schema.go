package query

// SchemaType is a JSON schema primitive.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema is the provider-neutral subset of JSON schema the generator backends understand.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Enum        []string
	Required    []string
	Nullable    bool
}

// ParsedQuerySchema describes the object the generator is asked to return.
func ParsedQuerySchema() *Schema {
	str := func(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }
	minutes := func(desc string) *Schema { return &Schema{Type: TypeInteger, Description: desc, Nullable: true} }

	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"genres": {
				Type:        TypeArray,
				Description: "Up to 4 movie genres",
				Items:       str("Genre name"),
			},
			"keywords": {
				Type:        TypeArray,
				Description: "Up to 8 single-word lowercase keywords",
				Items:       str("Keyword"),
			},
			"tempo": {
				Type:     TypeString,
				Enum:     []string{string(TempoSlow), string(TempoMedium), string(TempoFast)},
				Nullable: true,
			},
			"runtime_min": minutes("Minimum runtime in minutes"),
			"runtime_max": minutes("Maximum runtime in minutes"),
			"era": {
				Type:     TypeObject,
				Nullable: true,
				Properties: map[string]*Schema{
					"from": {Type: TypeInteger},
					"to":   {Type: TypeInteger},
				},
			},
			"language":     {Type: TypeString, Description: "ISO 639-1 code", Nullable: true},
			"adult":        {Type: TypeBoolean},
			"moodResponse": {Type: TypeString, Enum: []string{"match", "address"}},
			"ambiguous":    {Type: TypeBoolean, Description: "True when the request has no specific anchors"},
		},
		Required: []string{"genres", "keywords", "moodResponse", "ambiguous"},
	}
}
