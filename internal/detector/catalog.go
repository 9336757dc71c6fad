package detector

// condition is one catalog entry: the clinical prompt scored by the embedding
// service plus the display metadata attached to a match.
type condition struct {
	key    string
	prompt string

	name            string
	severity        string
	characteristics []string
	recommendation  string
}

// catalog is the fixed reference set. Order matters: scores returned by the
// embedding service are positional.
var catalog = []condition{
	{
		key:             "psoriasis",
		prompt:          "chronic plaque psoriasis with well-demarcated erythematous plaques and silvery scales",
		name:            "Psoriasis-like appearance",
		severity:        "Medium",
		characteristics: []string{"Thick plaques", "Silvery scales", "Well-defined borders"},
		recommendation:  "See a dermatologist if patches are spreading, painful, or very itchy.",
	},
	{
		key:             "eczema",
		prompt:          "atopic dermatitis eczema with lichenified pruritic patches and xerosis",
		name:            "Eczema-like appearance",
		severity:        "Low to Medium",
		characteristics: []string{"Red patches", "Dry skin", "Itching"},
		recommendation:  "Gentle moisturizer, avoid harsh soaps and known triggers.",
	},
	{
		key:             "melanoma",
		prompt:          "cutaneous melanoma with irregular asymmetric borders and color variegation",
		name:            "Irregular dark spot",
		severity:        "High",
		characteristics: []string{"Irregular shape", "Multiple colors", "May grow over time"},
		recommendation:  "Seek an in-person dermatology evaluation, especially if changing.",
	},
	{
		key:             "basal",
		prompt:          "basal cell carcinoma with pearly translucent nodule and telangiectasia",
		name:            "Shiny bump",
		severity:        "Medium to High",
		characteristics: []string{"Pearly bump", "May bleed", "Does not heal for weeks"},
		recommendation:  "Consider medical review if spot is persistent or bleeding.",
	},
	{
		key:             "actinic",
		prompt:          "actinic keratosis showing rough scaly erythematous patch on photodamaged skin",
		name:            "Rough scaly patch",
		severity:        "Medium",
		characteristics: []string{"Scaly patch", "Sun-exposed areas"},
		recommendation:  "Protect from sun and consider in-person evaluation if persistent.",
	},
	{
		key:             "dermatofibroma",
		prompt:          "dermatofibroma showing positive dimple sign with hyperpigmented center",
		name:            "Firm brown bump",
		severity:        "Low",
		characteristics: []string{"Firm bump", "Brown", "Dimples when pinched"},
		recommendation:  "Often harmless; get checked if changing or symptomatic.",
	},
	{
		key:             "benign",
		prompt:          "seborrheic keratosis with stuck-on appearance and verrucous surface",
		name:            "Waxy stuck-on growth",
		severity:        "Low",
		characteristics: []string{"Waxy", "Stuck-on look"},
		recommendation:  "Usually harmless; cosmetic removal is optional.",
	},
	{
		key:             "melanocytic",
		prompt:          "benign melanocytic nevus with uniform pigmentation and symmetric borders",
		name:            "Regular mole",
		severity:        "Low",
		characteristics: []string{"Symmetric", "Uniform color"},
		recommendation:  "Monitor for changes in size, color, or shape.",
	},
	{
		key:             "vascular",
		prompt:          "benign vascular lesion cherry angioma with bright red papule",
		name:            "Small red vascular spot",
		severity:        "Low",
		characteristics: []string{"Red spot", "Blanches on pressure"},
		recommendation:  "Often benign; seek review if rapidly changing or symptomatic.",
	},
	{
		key:             "acne",
		prompt:          "acne vulgaris with comedones papules and pustules",
		name:            "Acne-like bumps",
		severity:        "Low to Medium",
		characteristics: []string{"Pimples", "Pustules", "Comedones"},
		recommendation:  "Gentle cleansing, non-comedogenic moisturizer, avoid picking.",
	},
	{
		key:             "rosacea",
		prompt:          "rosacea showing persistent facial erythema and telangiectasia",
		name:            "Redness with small bumps",
		severity:        "Low to Medium",
		characteristics: []string{"Redness", "Flushing", "Visible vessels"},
		recommendation:  "Avoid known triggers like heat, spicy foods, and harsh products.",
	},
	{
		key:             "vitiligo",
		prompt:          "Well-defined, depigmented white patches with sharp borders and no surface scaling.",
		name:            "Lighter smooth patches",
		severity:        "Low",
		characteristics: []string{"Depigmented patches", "Sharp borders"},
		recommendation:  "Sun protection and in-person guidance if spreading or concerning.",
	},
	{
		key:             "tinea",
		prompt:          "tinea corporis ringworm with annular scaling plaque and active peripheral border",
		name:            "Ring-like rash",
		severity:        "Low",
		characteristics: []string{"Circular", "Itchy", "Raised border"},
		recommendation:  "Keep area dry; over-the-counter antifungal creams are often used.",
	},
	{
		key:             "urticaria",
		prompt:          "acute urticaria showing transient erythematous wheals",
		name:            "Itchy welts Rash like",
		severity:        "Low to Medium",
		characteristics: []string{"Raised welts", "Move around", "Itchy"},
		recommendation:  "Often responds to antihistamines; seek care if severe or persistent.",
	},
}

func prompts() []string {
	out := make([]string, len(catalog))
	for i, c := range catalog {
		out[i] = c.prompt
	}
	return out
}
