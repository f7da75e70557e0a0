package entities

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Category is the trade a service provider is listed under
type Category string

const (
	CategoryPlumber     Category = "VVS"
	CategoryElectrician Category = "Elektriker"
	CategorySewer       Category = "Kloakfirma"
	CategoryLocksmith   Category = "Låsesmed"
	CategoryGlazier     Category = "Glarmester"
	CategoryOther       Category = "Andet akut"
)

// Category filter sentinels that select every provider. "Alle" is what the
// Danish front-end sends.
const (
	CategoryAll      = "All"
	CategoryAllAlias = "Alle"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryPlumber,
	CategoryElectrician,
	CategorySewer,
	CategoryLocksmith,
	CategoryGlazier,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsAllCategories reports whether a category filter selects everything.
func IsAllCategories(filter string) bool {
	return filter == CategoryAll || filter == CategoryAllAlias
}

// ServiceProvider is an emergency tradesperson listed in the directory.
// Lat and Lon are either both set or both nil; DistanceKm is derived per
// request and never stored.
type ServiceProvider struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Category    Category  `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	HourlyRate  *float64  `json:"hourlyRate,omitempty"`
	Website     string    `json:"website,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
	DistanceKm  *float64  `json:"distanceKm,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Coordinates returns the provider location when both coordinates are known.
func (p *ServiceProvider) Coordinates() (Location, bool) {
	if p.Lat == nil || p.Lon == nil {
		return Location{}, false
	}
	return Location{Latitude: *p.Lat, Longitude: *p.Lon}, true
}

// Normalize trims text fields and drops values that are not meaningful:
// a partial coordinate pair, a sub-category outside the catch-all category and
// a derived distance.
func (p *ServiceProvider) Normalize() {
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.Address = strings.TrimSpace(p.Address)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Category = Category(strings.TrimSpace(string(p.Category)))
	p.Subcategory = strings.TrimSpace(p.Subcategory)
	p.Website = strings.TrimSpace(p.Website)

	if p.Lat == nil || p.Lon == nil {
		p.Lat, p.Lon = nil, nil
	}
	if p.Category != CategoryOther {
		p.Subcategory = ""
	}
	p.DistanceKm = nil
}

// MissingFields returns the names of required fields that are empty.
func (p *ServiceProvider) MissingFields() []string {
	var missing []string
	if p.CompanyName == "" {
		missing = append(missing, "companyName")
	}
	if p.Address == "" {
		missing = append(missing, "address")
	}
	if p.Phone == "" {
		missing = append(missing, "phone")
	}
	if p.Category == "" {
		missing = append(missing, "category")
	}
	return missing
}

// Clone returns a copy that shares no pointers with p.
func (p *ServiceProvider) Clone() *ServiceProvider {
	c := *p
	c.HourlyRate = copyFloat(p.HourlyRate)
	c.Lat = copyFloat(p.Lat)
	c.Lon = copyFloat(p.Lon)
	c.DistanceKm = copyFloat(p.DistanceKm)
	return &c
}

// ProviderPatch carries a partial update; nil fields are left unchanged.
// The optional fields can be removed with the Clear* flags, which a JSON null
// sets when decoding. Clearing either coordinate clears both.
type ProviderPatch struct {
	CompanyName *string   `json:"companyName,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Subcategory *string   `json:"subcategory,omitempty"`
	HourlyRate  *float64  `json:"hourlyRate,omitempty"`
	Website     *string   `json:"website,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`

	ClearSubcategory bool `json:"-"`
	ClearHourlyRate  bool `json:"-"`
	ClearWebsite     bool `json:"-"`
	ClearLocation    bool `json:"-"`
}

// UnmarshalJSON decodes a patch and turns explicit nulls on optional fields
// into Clear* flags. A null on a required field leaves it unchanged.
func (patch *ProviderPatch) UnmarshalJSON(data []byte) error {
	type plain ProviderPatch
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	isNull := func(key string) bool {
		v, ok := raw[key]
		return ok && bytes.Equal(bytes.TrimSpace(v), []byte("null"))
	}

	*patch = ProviderPatch(decoded)
	patch.ClearSubcategory = isNull("subcategory")
	patch.ClearHourlyRate = isNull("hourlyRate")
	patch.ClearWebsite = isNull("website")
	patch.ClearLocation = isNull("lat") || isNull("lon")
	return nil
}

// Apply returns p with the patch applied. The ID and creation time never change.
func (patch ProviderPatch) Apply(p *ServiceProvider) *ServiceProvider {
	out := p.Clone()
	if patch.CompanyName != nil {
		out.CompanyName = *patch.CompanyName
	}
	if patch.Address != nil {
		out.Address = *patch.Address
	}
	if patch.Phone != nil {
		out.Phone = *patch.Phone
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		out.Subcategory = *patch.Subcategory
	} else if patch.ClearSubcategory {
		out.Subcategory = ""
	}
	if patch.HourlyRate != nil {
		out.HourlyRate = copyFloat(patch.HourlyRate)
	} else if patch.ClearHourlyRate {
		out.HourlyRate = nil
	}
	if patch.Website != nil {
		out.Website = *patch.Website
	} else if patch.ClearWebsite {
		out.Website = ""
	}
	if patch.Lat != nil && patch.Lon != nil {
		out.Lat = copyFloat(patch.Lat)
		out.Lon = copyFloat(patch.Lon)
	} else if patch.ClearLocation {
		out.Lat, out.Lon = nil, nil
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
