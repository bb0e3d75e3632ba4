package terms

// Default returns the built-in reference vocabulary used when no
// dictionary file is configured. It covers common medications, dosage
// units and frequencies, routine lab tests, vital signs, and route
// abbreviations seen on prescriptions and lab reports.
func Default() *Dictionary {
	d, err := New(defaultEntries())
	if err != nil {
		// The built-in data is validated by tests; failing here is a defect.
		panic("terms: built-in dictionary invalid: " + err.Error())
	}
	return d
}

func defaultEntries() map[Category][]Entry {
	return map[Category][]Entry{
		CategoryMedication: {
			{Canonical: "aspirin", Synonyms: []string{"acetylsalicylic acid"}, Abbreviations: []string{"asa"}},
			{Canonical: "ibuprofen", Synonyms: []string{"advil", "motrin"}},
			{Canonical: "acetaminophen", Synonyms: []string{"paracetamol", "tylenol"}, Abbreviations: []string{"apap"}},
			{Canonical: "amoxicillin", Synonyms: []string{"amoxil"}},
			{Canonical: "metformin", Synonyms: []string{"glucophage"}},
			{Canonical: "lisinopril", Synonyms: []string{"prinivil", "zestril"}},
			{Canonical: "atorvastatin", Synonyms: []string{"lipitor"}},
			{Canonical: "simvastatin", Synonyms: []string{"zocor"}},
			{Canonical: "omeprazole", Synonyms: []string{"prilosec"}},
			{Canonical: "amlodipine", Synonyms: []string{"norvasc"}},
			{Canonical: "metoprolol", Synonyms: []string{"lopressor", "toprol"}},
			{Canonical: "losartan", Synonyms: []string{"cozaar"}},
			{Canonical: "gabapentin", Synonyms: []string{"neurontin"}},
			{Canonical: "sertraline", Synonyms: []string{"zoloft"}},
			{Canonical: "levothyroxine", Synonyms: []string{"synthroid"}},
			{Canonical: "prednisone", Synonyms: []string{"deltasone"}},
			{Canonical: "insulin"},
			{Canonical: "warfarin", Synonyms: []string{"coumadin"}},
			{Canonical: "furosemide", Synonyms: []string{"lasix"}},
			{Canonical: "hydrochlorothiazide", Abbreviations: []string{"hctz"}},
			{Canonical: "azithromycin", Synonyms: []string{"zithromax", "z-pak"}},
			{Canonical: "ciprofloxacin", Synonyms: []string{"cipro"}},
		},
		CategoryDosageUnit: {
			{Canonical: "mg", Synonyms: []string{"milligram", "milligrams"}},
			{Canonical: "mcg", Synonyms: []string{"microgram", "micrograms", "ug"}},
			{Canonical: "g", Synonyms: []string{"gram", "grams", "gm"}},
			{Canonical: "ml", Synonyms: []string{"milliliter", "milliliters", "cc"}},
			{Canonical: "unit", Synonyms: []string{"units"}, Abbreviations: []string{"iu"}},
			{Canonical: "tablet", Synonyms: []string{"tablets"}, Abbreviations: []string{"tab", "tabs"}},
			{Canonical: "capsule", Synonyms: []string{"capsules"}, Abbreviations: []string{"cap", "caps"}},
			{Canonical: "injection", Synonyms: []string{"injections"}, Abbreviations: []string{"inj"}},
			{Canonical: "drop", Synonyms: []string{"drops"}, Abbreviations: []string{"gtt"}},
			{Canonical: "puff", Synonyms: []string{"puffs"}},
		},
		CategoryDosageFrequency: {
			{Canonical: "once daily", Synonyms: []string{"daily", "once a day", "every day"}, Abbreviations: []string{"qd", "q.d.", "od"}},
			{Canonical: "twice daily", Synonyms: []string{"twice a day", "two times daily"}, Abbreviations: []string{"bid", "b.i.d."}},
			{Canonical: "three times daily", Synonyms: []string{"three times a day"}, Abbreviations: []string{"tid", "t.i.d."}},
			{Canonical: "four times daily", Synonyms: []string{"four times a day"}, Abbreviations: []string{"qid", "q.i.d."}},
			{Canonical: "every other day", Abbreviations: []string{"qod", "q.o.d."}},
			{Canonical: "as needed", Abbreviations: []string{"prn", "p.r.n."}},
			{Canonical: "at bedtime", Abbreviations: []string{"qhs", "hs"}},
			{Canonical: "every morning", Abbreviations: []string{"qam"}},
			{Canonical: "every hour", Abbreviations: []string{"q1h", "qh"}},
		},
		CategoryLabTest: {
			{Canonical: "hemoglobin", Abbreviations: []string{"hgb", "hb"}},
			{Canonical: "hematocrit", Abbreviations: []string{"hct"}},
			{Canonical: "white blood cell count", Synonyms: []string{"white blood cells"}, Abbreviations: []string{"wbc"}},
			{Canonical: "red blood cell count", Synonyms: []string{"red blood cells"}, Abbreviations: []string{"rbc"}},
			{Canonical: "platelet count", Synonyms: []string{"platelets"}, Abbreviations: []string{"plt"}},
			{Canonical: "glucose", Synonyms: []string{"blood glucose", "blood sugar"}},
			{Canonical: "hemoglobin a1c", Synonyms: []string{"a1c"}, Abbreviations: []string{"hba1c"}},
			{Canonical: "creatinine", Abbreviations: []string{"cr"}},
			{Canonical: "blood urea nitrogen", Abbreviations: []string{"bun"}},
			{Canonical: "sodium", Abbreviations: []string{"na"}},
			{Canonical: "potassium"},
			{Canonical: "chloride", Abbreviations: []string{"cl"}},
			{Canonical: "cholesterol", Synonyms: []string{"total cholesterol"}},
			{Canonical: "triglycerides", Abbreviations: []string{"tg"}},
			{Canonical: "thyroid stimulating hormone", Abbreviations: []string{"tsh"}},
			{Canonical: "alanine aminotransferase", Abbreviations: []string{"alt"}},
			{Canonical: "aspartate aminotransferase", Abbreviations: []string{"ast"}},
		},
		CategoryVitalSign: {
			{Canonical: "blood pressure", Abbreviations: []string{"bp", "b.p."}},
			{Canonical: "heart rate", Synonyms: []string{"pulse", "pulse rate"}, Abbreviations: []string{"hr"}},
			{Canonical: "temperature", Synonyms: []string{"temp"}},
			{Canonical: "respiratory rate", Abbreviations: []string{"rr"}},
			{Canonical: "oxygen saturation", Synonyms: []string{"spo2", "o2 saturation", "o2 sat"}},
			{Canonical: "weight", Abbreviations: []string{"wt"}},
			{Canonical: "height", Abbreviations: []string{"ht"}},
			{Canonical: "body mass index", Abbreviations: []string{"bmi"}},
		},
		CategoryAbbreviation: {
			{Canonical: "by mouth", Synonyms: []string{"oral", "orally"}, Abbreviations: []string{"po", "p.o."}},
			{Canonical: "subcutaneous", Synonyms: []string{"subcutaneously"}, Abbreviations: []string{"sc", "s.c.", "subq"}},
			{Canonical: "intramuscular", Synonyms: []string{"intramuscularly"}, Abbreviations: []string{"im", "i.m."}},
			{Canonical: "intravenous", Synonyms: []string{"intravenously"}, Abbreviations: []string{"iv", "i.v."}},
			{Canonical: "nothing by mouth", Abbreviations: []string{"npo", "n.p.o."}},
			{Canonical: "sublingual", Abbreviations: []string{"sl", "s.l."}},
			{Canonical: "topical", Synonyms: []string{"topically"}, Abbreviations: []string{"top"}},
		},
	}
}
