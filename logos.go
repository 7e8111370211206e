package dealerdocs

import "maps"

// manufacturerLogos maps Arabic and English manufacturer names to logo asset
// paths. Both spellings of a manufacturer share one path. Keys are matched
// exactly, case included.
var manufacturerLogos = map[string]string{
	"Toyota":        "logos/toyota.svg",
	"تويوتا":        "logos/toyota.svg",
	"Lexus":         "logos/lexus.svg",
	"لكزس":          "logos/lexus.svg",
	"Nissan":        "logos/nissan.svg",
	"نيسان":         "logos/nissan.svg",
	"Infiniti":      "logos/infiniti.svg",
	"انفينيتي":      "logos/infiniti.svg",
	"Mercedes":      "logos/mercedes.svg",
	"Mercedes-Benz": "logos/mercedes.svg",
	"مرسيدس":        "logos/mercedes.svg",
	"BMW":           "logos/bmw.svg",
	"بي ام دبليو":   "logos/bmw.svg",
	"Audi":          "logos/audi.svg",
	"أودي":          "logos/audi.svg",
	"Volkswagen":    "logos/volkswagen.svg",
	"فولكس واجن":    "logos/volkswagen.svg",
	"Porsche":       "logos/porsche.svg",
	"بورش":          "logos/porsche.svg",
	"Land Rover":    "logos/land-rover.svg",
	"لاند روفر":     "logos/land-rover.svg",
	"Range Rover":   "logos/range-rover.svg",
	"رنج روفر":      "logos/range-rover.svg",
	"Bentley":       "logos/bentley.svg",
	"بنتلي":         "logos/bentley.svg",
	"Rolls Royce":   "logos/rolls-royce.svg",
	"رولز رويس":     "logos/rolls-royce.svg",
	"Ford":          "logos/ford.svg",
	"فورد":          "logos/ford.svg",
	"Chevrolet":     "logos/chevrolet.svg",
	"شيفروليه":      "logos/chevrolet.svg",
	"GMC":           "logos/gmc.svg",
	"جي ام سي":      "logos/gmc.svg",
	"Cadillac":      "logos/cadillac.svg",
	"كاديلاك":       "logos/cadillac.svg",
	"Dodge":         "logos/dodge.svg",
	"دودج":          "logos/dodge.svg",
	"Jeep":          "logos/jeep.svg",
	"جيب":           "logos/jeep.svg",
	"Hyundai":       "logos/hyundai.svg",
	"هيونداي":       "logos/hyundai.svg",
	"Genesis":       "logos/genesis.svg",
	"جينيسيس":       "logos/genesis.svg",
	"Kia":           "logos/kia.svg",
	"كيا":           "logos/kia.svg",
	"Honda":         "logos/honda.svg",
	"هوندا":         "logos/honda.svg",
	"Mitsubishi":    "logos/mitsubishi.svg",
	"ميتسوبيشي":     "logos/mitsubishi.svg",
	"Mazda":         "logos/mazda.svg",
	"مازدا":         "logos/mazda.svg",
}

// LookupLogo returns the logo asset path for a manufacturer name.
// A miss returns ("", false); callers render without a logo.
func LookupLogo(name string) (string, bool) {
	p, ok := manufacturerLogos[name]
	return p, ok
}

// LogoResolver is LookupLogo extended with deployment-specific aliases.
// It is read-only after construction.
type LogoResolver struct {
	table map[string]string
}

// NewLogoResolver copies the built-in table and adds aliases on top.
// An alias may shadow a built-in name.
func NewLogoResolver(aliases map[string]string) *LogoResolver {
	table := maps.Clone(manufacturerLogos)
	maps.Copy(table, aliases)
	return &LogoResolver{table: table}
}

// Lookup returns the asset path for name with the same exact-match rules as LookupLogo.
func (r *LogoResolver) Lookup(name string) (string, bool) {
	if r == nil {
		return LookupLogo(name)
	}
	p, ok := r.table[name]
	return p, ok
}

// Len returns the number of names the resolver knows.
func (r *LogoResolver) Len() int {
	if r == nil {
		return len(manufacturerLogos)
	}
	return len(r.table)
}
