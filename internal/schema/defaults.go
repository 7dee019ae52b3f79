package schema

// Default returns the built-in definition used when no schema file is configured.
func Default() *Definition {
	def := &Definition{
		Targets: map[string]*FieldDefinition{
			"interaction": {Fields: map[string]*FieldDefinition{
				"content": {Type: TypeString},
				"title":   {Type: TypeString},
				"type":    {Type: TypeString},
				"link":    {Type: TypeString},
				"sample":  {Type: TypeInt},
				"geo":     {Type: TypeGeo},
				"author": {Fields: map[string]*FieldDefinition{
					"name":     {Type: TypeString},
					"username": {Type: TypeString},
					"id":       {Type: TypeInt},
				}},
			}},
			"twitter": {Fields: map[string]*FieldDefinition{
				"text":     {Type: TypeString},
				"lang":     {Type: TypeString},
				"mentions": {Type: TypeString},
				"geo":      {Type: TypeGeo},
				"user": {Fields: map[string]*FieldDefinition{
					"name":            {Type: TypeString},
					"screen_name":     {Type: TypeString},
					"location":        {Type: TypeString},
					"id":              {Type: TypeInt},
					"followers_count": {Type: TypeInt},
					"friends_count":   {Type: TypeInt},
				}},
				"place": {Fields: map[string]*FieldDefinition{
					"country":      {Type: TypeString},
					"country_code": {Type: TypeString},
				}},
				"retweet": {Fields: map[string]*FieldDefinition{
					"count": {Type: TypeInt},
				}},
			}},
			"facebook": {Fields: map[string]*FieldDefinition{
				"message": {Type: TypeString},
				"author": {Fields: map[string]*FieldDefinition{
					"name": {Type: TypeString},
					"id":   {Type: TypeInt},
				}},
			}},
			"klout": {Fields: map[string]*FieldDefinition{
				"score": {Type: TypeInt},
			}},
			"language": {Fields: map[string]*FieldDefinition{
				"tag":        {Type: TypeString},
				"confidence": {Type: TypeInt},
			}},
			"salience": {Fields: map[string]*FieldDefinition{
				"content": {Fields: map[string]*FieldDefinition{
					"sentiment": {Type: TypeInt},
				}},
			}},
		},
		Operators: map[string]*OperatorDefinition{
			OperatorExists:       {Label: "Exists", Code: "exists"},
			"equals":             {Label: "Equals", Code: "=="},
			"different":          {Label: "Different", Code: "!="},
			"contains":           {Label: "Contains", Code: "contains"},
			"substr":             {Label: "Substring", Code: "substr"},
			"contains_any":       {Label: "Contains any", Code: "contains_any"},
			"contains_near":      {Label: "Contains near", Code: "contains_near"},
			"any":                {Label: "Any", Code: "any"},
			OperatorIn:           {Label: "In", Code: "in"},
			"greaterThan":        {Label: "Greater than", Code: ">"},
			"lessThan":           {Label: "Less than", Code: "<"},
			"greaterThanOrEqual": {Label: "Greater than or equal", Code: ">="},
			"lessThanOrEqual":    {Label: "Less than or equal", Code: "<="},
			OperatorRegexPartial: {Label: "Regex partial", Code: "regex_partial"},
			OperatorRegexExact:   {Label: "Regex exact", Code: "regex_exact"},
			"geo_box":            {Label: "Geo box", Code: "geo_box"},
			"geo_radius":         {Label: "Geo radius", Code: "geo_radius"},
			"geo_polygon":        {Label: "Geo polygon", Code: "geo_polygon"},
		},
	}
	// built-in definition is valid by construction; normalize only fills names
	_ = def.normalize()
	return def
}
