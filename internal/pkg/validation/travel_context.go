package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/FACorreiaa/go-tripplanner/internal/app/models"
)

const dateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ChildInput is a child entry as submitted by the context form.
type ChildInput struct {
	Age int `json:"age"`
}

// ContextInput is the raw context-setup form.
type ContextInput struct {
	Location      string             `json:"location"`
	Coordinates   *models.Coordinate `json:"coordinates,omitempty"`
	Adults        int                `json:"adults"`
	Children      []ChildInput       `json:"children"`
	StartDate     string             `json:"startDate"`
	EndDate       string             `json:"endDate"`
	Budget        float64            `json:"budget"`
	MobilityNeeds []string           `json:"mobilityNeeds"`
}

// TravelContextSchema returns the rules of the context-setup form. The end date rule needs the start
// date, so the schema is built per input.
func TravelContextSchema(startDate string) Schema {
	return Schema{
		"location": {
			Required("Please tell us where you're going"),
			MinLength(2, "Location must be at least 2 characters"),
			MaxLength(100, "Location must be at most 100 characters"),
		},
		"adults": {
			Required("Number of adults is required"),
			Min(1, "At least one adult must travel"),
			Max(20, "Groups are limited to 20 adults"),
		},
		"children": {
			Optional(),
			Custom(func(value any) bool {
				children, ok := value.([]ChildInput)
				if !ok {
					return false
				}
				for _, c := range children {
					if c.Age < 0 || c.Age > 17 {
						return false
					}
				}
				return true
			}, "Children must be between 0 and 17 years old"),
		},
		"startDate": {
			Required("Start date is required"),
			Pattern(datePattern, "Start date must look like YYYY-MM-DD"),
			Custom(isDate, "Start date is not a valid date"),
		},
		"endDate": {
			Required("End date is required"),
			Pattern(datePattern, "End date must look like YYYY-MM-DD"),
			Custom(isDate, "End date is not a valid date"),
			Custom(func(value any) bool {
				start, err := time.Parse(dateLayout, startDate)
				if err != nil {
					// reported on startDate
					return true
				}
				end, err := time.Parse(dateLayout, value.(string))
				return err == nil && !end.Before(start)
			}, "End date cannot be before the start date"),
		},
		"budget": {
			Required("Budget is required"),
			Custom(func(value any) bool {
				n, ok := asNumber(value)
				return ok && n > 0
			}, "Budget must be greater than zero"),
		},
	}
}

// BuildTravelContext validates the form and converts it into a TravelContext.
// The returned Errors is empty when the input is valid.
func BuildTravelContext(in ContextInput) (models.TravelContext, Errors) {
	data := map[string]any{
		"location":  strings.TrimSpace(in.Location),
		"adults":    in.Adults,
		"children":  in.Children,
		"startDate": in.StartDate,
		"endDate":   in.EndDate,
		"budget":    in.Budget,
	}
	if errs := ValidateForm(data, TravelContextSchema(in.StartDate)); len(errs) > 0 {
		return models.TravelContext{}, errs
	}

	start, _ := time.Parse(dateLayout, in.StartDate)
	end, _ := time.Parse(dateLayout, in.EndDate)

	children := make([]models.Child, 0, len(in.Children))
	for _, c := range in.Children {
		children = append(children, models.Child{Age: c.Age})
	}
	mobility := make([]string, 0, len(in.MobilityNeeds))
	for _, tag := range in.MobilityNeeds {
		if tag = strings.TrimSpace(tag); tag != "" {
			mobility = append(mobility, tag)
		}
	}

	ctx := models.TravelContext{
		Location: strings.TrimSpace(in.Location),
		Group: models.TravelGroup{
			Adults:   in.Adults,
			Children: children,
		},
		Dates:         models.DateRange{Start: start, End: end},
		Budget:        in.Budget,
		MobilityNeeds: mobility,
	}
	if in.Coordinates != nil {
		coord := *in.Coordinates
		ctx.Coordinates = &coord
	}
	return ctx, nil
}

func isDate(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
