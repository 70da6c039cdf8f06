package templates

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mikermcconnell/HomeHealth/internal/models"
	"github.com/mikermcconnell/HomeHealth/pkg/validation"
)

const catalogPathEnvVar = "TEMPLATE_CATALOG_PATH"

// catalogSchema validates override files before they replace the built-in
// catalogue. A file that parses but violates the schema is an error, not a
// silent fallback.
const catalogSchema = `{
  "type": "object",
  "properties": {
    "shared": {"$ref": "#/definitions/templateList"},
    "house": {"$ref": "#/definitions/templateList"},
    "assets": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/templateList"}
    }
  },
  "additionalProperties": false,
  "definitions": {
    "templateList": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "importance": {"type": "string"},
          "priority": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
          "category": {"type": "string"},
          "recurring": {"type": "boolean"},
          "season": {"type": "string", "enum": ["", "Late Spring", "Late Fall"]}
        },
        "required": ["title"],
        "additionalProperties": false
      }
    }
  }
}`

// Catalog holds the unscheduled template sets the schedulers expand:
// starter templates shared by every home, extras for houses, and per-asset
// care templates keyed by asset category.
type Catalog struct {
	Shared []models.TaskTemplate            `json:"shared"`
	House  []models.TaskTemplate            `json:"house"`
	Assets map[string][]models.TaskTemplate `json:"assets"`
}

// Builtin returns the default catalogue.
func Builtin() *Catalog {
	return &Catalog{
		Shared: []models.TaskTemplate{
			{
				Title:       "Test Smoke Alarms",
				Description: "Press the test button on every smoke and CO alarm and replace any that fail.",
				Importance:  "Working alarms are the single cheapest protection against house fires.",
				Priority:    models.PriorityHigh,
				Category:    "Safety",
				Recurring:   true,
			},
			{
				Title:       "Replace HVAC Filter",
				Description: "Swap the return-air filter so the system breathes freely.",
				Importance:  "A clogged filter strains the blower and recirculates dust.",
				Priority:    models.PriorityMedium,
				Category:    "HVAC",
				Recurring:   true,
			},
			{
				Title:       "Flush Water Heater",
				Description: "Drain a few gallons from the tank to clear sediment.",
				Importance:  "Sediment buildup shortens tank life and wastes energy.",
				Priority:    models.PriorityMedium,
				Category:    "Plumbing",
				Recurring:   true,
			},
		},
		House: []models.TaskTemplate{
			{
				Title:       "Clean Gutters",
				Description: "Clear leaves and debris from gutters and downspouts before winter.",
				Importance:  "Blocked gutters send roof water straight at the foundation.",
				Priority:    models.PriorityMedium,
				Category:    "Exterior",
				Recurring:   true,
				Season:      models.SeasonLateFall,
			},
			{
				Title:       "Service HVAC System",
				Description: "Have a technician inspect and tune the system before cooling season.",
				Importance:  "A spring tune-up catches failures before the first heat wave.",
				Priority:    models.PriorityMedium,
				Category:    "HVAC",
				Recurring:   true,
				Season:      models.SeasonLateSpring,
			},
			{
				Title:       "Inspect Roof Shingles",
				Description: "Scan the roof from the ground with binoculars for lifted or missing shingles.",
				Importance:  "A missing shingle found early is a patch, not a ceiling stain.",
				Priority:    models.PriorityLow,
				Category:    "Exterior",
				Recurring:   true,
			},
			{
				Title:       "Clean Dryer Vent",
				Description: "Disconnect the duct and clear lint from the full vent run.",
				Importance:  "Lint-packed vents are a leading cause of appliance fires.",
				Priority:    models.PriorityMedium,
				Category:    "Laundry",
				Recurring:   true,
			},
			{
				Title:       "Fertilize Lawn",
				Description: "Apply seasonal fertilizer appropriate for the grass type.",
				Importance:  "Fed turf crowds out weeds and handles drought better.",
				Priority:    models.PriorityLow,
				Category:    "Yard",
				Recurring:   true,
			},
			{
				Title:       "Inspect Foundation for Cracks",
				Description: "Walk the perimeter and note any new or widening cracks.",
				Importance:  "Movement caught early is monitoring; caught late it is underpinning.",
				Priority:    models.PriorityLow,
				Category:    "Structural",
				Recurring:   false,
			},
		},
		Assets: map[string][]models.TaskTemplate{
			"Refrigerator": {
				{
					Title:       "Clean Coils",
					Description: "Vacuum the condenser coils behind or beneath the unit.",
					Importance:  "Dusty coils make the compressor run hot and die young.",
					Priority:    models.PriorityLow,
					Category:    "Appliance",
					Recurring:   true,
				},
				{
					Title:       "Replace Water Filter",
					Description: "Swap the inline water filter cartridge.",
					Importance:  "An expired filter stops filtering and slows the dispenser.",
					Priority:    models.PriorityLow,
					Category:    "Appliance",
					Recurring:   true,
				},
			},
			"HVAC": {
				{
					Title:       "Replace Air Filter",
					Description: "Swap the return-air filter for this unit.",
					Importance:  "A fresh filter keeps airflow and air quality up.",
					Priority:    models.PriorityMedium,
					Category:    "HVAC",
					Recurring:   true,
				},
				{
					Title:       "Schedule HVAC Tune-Up",
					Description: "Book a professional inspection and tune-up.",
					Importance:  "Annual service preserves efficiency and most warranties.",
					Priority:    models.PriorityMedium,
					Category:    "HVAC",
					Recurring:   true,
				},
			},
			"Smoke Alarm": {
				{
					Title:       "Replace Smoke Alarm Batteries",
					Description: "Fit fresh batteries even if the old ones still chirp to life.",
					Importance:  "A dead battery turns a life-safety device into ceiling decor.",
					Priority:    models.PriorityHigh,
					Category:    "Safety",
					Recurring:   true,
				},
			},
			"Water Heater": {
				{
					Title:       "Test Pressure Relief Valve",
					Description: "Lift the relief valve lever briefly and confirm it reseats without dripping.",
					Importance:  "A stuck valve removes the tank's last defense against overpressure.",
					Priority:    models.PriorityMedium,
					Category:    "Plumbing",
					Recurring:   true,
				},
			},
			"Washer": {
				{
					Title:       "Inspect Washer Hoses",
					Description: "Check supply hoses for bulges, rust, or seepage at the fittings.",
					Importance:  "A burst hose floods the laundry room at mains pressure.",
					Priority:    models.PriorityMedium,
					Category:    "Appliance",
					Recurring:   true,
				},
			},
			"Dishwasher": {
				{
					Title:       "Clean Dishwasher Filter",
					Description: "Remove and rinse the basket filter at the bottom of the tub.",
					Importance:  "A fouled filter redeposits food grit on every load.",
					Priority:    models.PriorityLow,
					Category:    "Appliance",
					Recurring:   true,
				},
			},
		},
	}
}

// Load returns the catalogue to use. With TEMPLATE_CATALOG_PATH unset the
// built-in set is used; when set, the file must exist and pass schema
// validation or Load fails, so a bad override never degrades silently.
func Load() (*Catalog, error) {
	path := os.Getenv(catalogPathEnvVar)
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a catalogue override file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog %s: %w", path, err)
	}
	if err := validation.ValidateJSONWithSchema(catalogSchema, string(data)); err != nil {
		return nil, fmt.Errorf("template catalog %s is invalid: %w", path, err)
	}
	cat := &Catalog{}
	if err := json.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog %s: %w", path, err)
	}
	return cat, nil
}

// Starter returns the templates seeded at onboarding for a home type.
// Houses receive the shared set plus exterior and yard extras.
func (c *Catalog) Starter(homeType models.HomeType) []models.TaskTemplate {
	out := make([]models.TaskTemplate, 0, len(c.Shared)+len(c.House))
	for _, t := range c.Shared {
		out = append(out, normalize(t))
	}
	if homeType == models.HomeTypeHouse {
		for _, t := range c.House {
			out = append(out, normalize(t))
		}
	}
	return out
}

// ForAsset returns care templates for an asset category, each tagged with
// the asset's id. Unknown categories yield nothing.
func (c *Catalog) ForAsset(assetID, category string) []models.TaskTemplate {
	src := c.Assets[category]
	out := make([]models.TaskTemplate, 0, len(src))
	for _, t := range src {
		n := normalize(t)
		n.AssetID = assetID
		out = append(out, n)
	}
	return out
}

// normalize fills the defaults override files may omit.
func normalize(t models.TaskTemplate) models.TaskTemplate {
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Category == "" {
		t.Category = models.CategoryGeneral
	}
	return t
}
