package profile

import "github.com/mroshb/hitched/internal/models"

// RequiredForMatching lists the fields a profile needs before it is offered as a candidate.
var RequiredForMatching = []string{
	"age",
	"location",
	"relationship_intent",
	"values",
	"communication_style",
	"temperament",
}

type Completeness struct {
	Complete       bool     `json:"complete"`
	Missing        []string `json:"missing"`
	RequiredFields []string `json:"required_fields"`
}

func CheckCompleteness(p *models.Profile) Completeness {
	missing := []string{}
	present := map[string]bool{}
	if p != nil {
		present = map[string]bool{
			"age":                 p.Age != nil,
			"location":            p.Location != "",
			"relationship_intent": p.Intent != "",
			"values":              len(p.Values) > 0,
			"communication_style": p.CommunicationStyle != "",
			"temperament":         p.Temperament != "",
		}
	}

	for _, field := range RequiredForMatching {
		if !present[field] {
			missing = append(missing, field)
		}
	}

	return Completeness{
		Complete:       len(missing) == 0,
		Missing:        missing,
		RequiredFields: RequiredForMatching,
	}
}
