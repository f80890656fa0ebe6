package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// GenOptions controls synthetic extract generation.
type GenOptions struct {
	Dir      string
	Patients int
	Seed     int64
}

// GenerateExtracts writes a full set of synthetic clinical extracts to
// opts.Dir, shaped like the real source files (same headers, same reference
// structure). Intended for dev and demo runs against an empty target schema.
func GenerateExtracts(opts GenOptions) error {
	if opts.Patients <= 0 {
		opts.Patients = 100
	}
	faker := gofakeit.New(opts.Seed)

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	orgIDs := make([]string, max(1, opts.Patients/20))
	for i := range orgIDs {
		orgIDs[i] = faker.UUID()
	}
	payerIDs := make([]string, 5)
	for i := range payerIDs {
		payerIDs[i] = faker.UUID()
	}
	patientIDs := make([]string, opts.Patients)
	for i := range patientIDs {
		patientIDs[i] = faker.UUID()
	}
	providerIDs := make([]string, max(1, opts.Patients/10))
	for i := range providerIDs {
		providerIDs[i] = faker.UUID()
	}
	encounterIDs := make([]string, opts.Patients*3)
	for i := range encounterIDs {
		encounterIDs[i] = faker.UUID()
	}

	pick := func(ids []string) string { return ids[faker.IntRange(0, len(ids)-1)] }
	date := func() string {
		return faker.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()).Format("2006-01-02")
	}
	stamp := func() string {
		return faker.DateRange(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()).UTC().Format("2006-01-02T15:04:05Z")
	}
	money := func(lo, hi float64) string { return fmt.Sprintf("%.2f", faker.Float64Range(lo, hi)) }

	files := []struct {
		name   string
		header []string
		count  int
		row    func(i int) []string
	}{
		{
			name:   "organizations.csv",
			header: []string{"ID", "NAME", "ADDRESS", "CITY", "STATE", "ZIP", "LAT", "LON", "PHONE", "REVENUE", "UTILIZATION"},
			count:  len(orgIDs),
			row: func(i int) []string {
				return []string{orgIDs[i], faker.Company() + " Medical Center", faker.Street(), faker.City(), faker.StateAbr(), faker.Zip(),
					fmt.Sprintf("%.6f", faker.Latitude()), fmt.Sprintf("%.6f", faker.Longitude()), faker.Phone(),
					money(1e5, 1e8), fmt.Sprintf("%d", faker.IntRange(10, 5000))}
			},
		},
		{
			name: "payers.csv",
			header: []string{"ID", "NAME", "OWNERSHIP", "ADDRESS", "CITY", "STATE", "ZIP", "PHONE", "AMOUNT_COVERED",
				"AMOUNT_UNCOVERED", "REVENUE", "COVERED_ENCOUNTERS", "UNCOVERED_ENCOUNTERS", "COVERED_MEDICATIONS",
				"UNCOVERED_MEDICATIONS", "COVERED_PROCEDURES", "UNCOVERED_PROCEDURES", "COVERED_IMMUNIZATIONS",
				"UNCOVERED_IMMUNIZATIONS", "UNIQUE_CUSTOMERS", "QOLS_AVG", "MEMBER_MONTHS"},
			count: len(payerIDs),
			row: func(i int) []string {
				return []string{payerIDs[i], faker.Company() + " Health", faker.RandomString([]string{"GOVERNMENT", "PRIVATE"}),
					faker.Street(), faker.City(), faker.StateAbr(), faker.Zip(), faker.Phone(),
					money(1e6, 1e9), money(1e4, 1e7), money(1e6, 1e9),
					fmt.Sprintf("%d", faker.IntRange(100, 100000)), fmt.Sprintf("%d", faker.IntRange(0, 10000)),
					fmt.Sprintf("%d", faker.IntRange(100, 100000)), fmt.Sprintf("%d", faker.IntRange(0, 10000)),
					fmt.Sprintf("%d", faker.IntRange(100, 100000)), fmt.Sprintf("%d", faker.IntRange(0, 10000)),
					fmt.Sprintf("%d", faker.IntRange(100, 100000)), fmt.Sprintf("%d", faker.IntRange(0, 10000)),
					fmt.Sprintf("%d", faker.IntRange(100, 50000)), fmt.Sprintf("%.3f", faker.Float64Range(0, 1)),
					fmt.Sprintf("%d", faker.IntRange(1000, 1000000))}
			},
		},
		{
			name: "patients.csv",
			header: []string{"ID", "BIRTHDATE", "DEATHDATE", "SSN", "DRIVERS", "PASSPORT", "PREFIX", "FIRST", "MIDDLE",
				"LAST", "SUFFIX", "MAIDEN", "MARITAL", "RACE", "ETHNICITY", "GENDER", "BIRTHPLACE", "ADDRESS", "CITY",
				"STATE", "COUNTY", "FIPS", "ZIP", "LAT", "LON", "HEALTHCARE_EXPENSES", "HEALTHCARE_COVERAGE", "INCOME"},
			count: len(patientIDs),
			row: func(i int) []string {
				return []string{patientIDs[i], date(), "", faker.SSN(), "S" + faker.DigitN(8), "X" + faker.DigitN(8),
					faker.NamePrefix(), faker.FirstName(), faker.FirstName(), faker.LastName(), "", "",
					faker.RandomString([]string{"M", "S", ""}), faker.RandomString([]string{"white", "black", "asian", "other"}),
					faker.RandomString([]string{"hispanic", "nonhispanic"}), faker.RandomString([]string{"M", "F"}),
					faker.City() + "  " + faker.StateAbr() + "  US", faker.Street(), faker.City(), faker.StateAbr(),
					faker.City() + " County", faker.DigitN(5), faker.Zip(),
					fmt.Sprintf("%.6f", faker.Latitude()), fmt.Sprintf("%.6f", faker.Longitude()),
					money(0, 2e6), money(0, 5e5), fmt.Sprintf("%d", faker.IntRange(0, 250000))}
			},
		},
		{
			name: "providers.csv",
			header: []string{"ID", "ORGANIZATION", "NAME", "GENDER", "SPECIALITY", "ADDRESS", "CITY", "STATE", "ZIP",
				"LAT", "LON", "ENCOUNTERS"},
			count: len(providerIDs),
			row: func(i int) []string {
				return []string{providerIDs[i], pick(orgIDs), faker.Name(), faker.RandomString([]string{"M", "F"}),
					faker.RandomString([]string{"GENERAL PRACTICE", "CARDIOLOGY", "PEDIATRICS", "ONCOLOGY"}),
					faker.Street(), faker.City(), faker.StateAbr(), faker.Zip(),
					fmt.Sprintf("%.6f", faker.Latitude()), fmt.Sprintf("%.6f", faker.Longitude()),
					fmt.Sprintf("%d", faker.IntRange(0, 2000))}
			},
		},
		{
			name: "encounters.csv",
			header: []string{"ID", "START", "STOP", "PATIENT", "ORGANIZATION", "PROVIDER", "PAYER", "ENCOUNTERCLASS",
				"CODE", "DESCRIPTION", "BASE_ENCOUNTER_COST", "TOTAL_CLAIM_COST", "PAYER_COVERAGE", "REASONCODE",
				"REASONDESCRIPTION"},
			count: len(encounterIDs),
			row: func(i int) []string {
				return []string{encounterIDs[i], stamp(), stamp(), pick(patientIDs), pick(orgIDs), pick(providerIDs), pick(payerIDs),
					faker.RandomString([]string{"ambulatory", "wellness", "emergency", "inpatient"}),
					faker.DigitN(9), "Encounter for " + faker.Word(), money(50, 500), money(100, 20000), money(0, 15000), "", ""}
			},
		},
		{
			name:   "conditions.csv",
			header: []string{"START", "STOP", "PATIENT", "ENCOUNTER", "SYSTEM", "CODE", "DESCRIPTION"},
			count:  opts.Patients * 2,
			row: func(i int) []string {
				return []string{date(), "", pick(patientIDs), pick(encounterIDs), "SNOMED-CT", faker.DigitN(9),
					faker.RandomString([]string{"Hypertension", "Diabetes mellitus type 2", "Viral sinusitis", "Anemia"})}
			},
		},
		{
			name: "medications.csv",
			header: []string{"START", "STOP", "PATIENT", "PAYER", "ENCOUNTER", "CODE", "DESCRIPTION", "BASE_COST",
				"PAYER_COVERAGE", "DISPENSES", "TOTALCOST", "REASONCODE", "REASONDESCRIPTION"},
			count: opts.Patients * 2,
			row: func(i int) []string {
				return []string{stamp(), "", pick(patientIDs), pick(payerIDs), pick(encounterIDs), faker.DigitN(7),
					faker.RandomString([]string{"Lisinopril 10 MG", "Metformin 500 MG", "Amoxicillin 250 MG"}),
					money(1, 500), money(0, 400), fmt.Sprintf("%d", faker.IntRange(1, 12)), money(10, 5000), "", ""}
			},
		},
		{
			name: "procedures.csv",
			header: []string{"START", "STOP", "PATIENT", "ENCOUNTER", "SYSTEM", "CODE", "DESCRIPTION", "BASE_COST",
				"REASONCODE", "REASONDESCRIPTION"},
			count: opts.Patients,
			row: func(i int) []string {
				return []string{stamp(), stamp(), pick(patientIDs), pick(encounterIDs), "SNOMED-CT", faker.DigitN(9),
					faker.RandomString([]string{"Medication reconciliation", "Depression screening", "Colonoscopy"}),
					money(100, 10000), "", ""}
			},
		},
		{
			name:   "observations.csv",
			header: []string{"DATE", "PATIENT", "ENCOUNTER", "CATEGORY", "CODE", "DESCRIPTION", "VALUE", "UNITS", "TYPE"},
			count:  opts.Patients * 4,
			row: func(i int) []string {
				return []string{stamp(), pick(patientIDs), pick(encounterIDs), "vital-signs", faker.DigitN(5) + "-" + faker.DigitN(1),
					faker.RandomString([]string{"Body Height", "Body Weight", "Systolic Blood Pressure"}),
					fmt.Sprintf("%.1f", faker.Float64Range(40, 200)), faker.RandomString([]string{"cm", "kg", "mm[Hg]"}), "numeric"}
			},
		},
		{
			name:   "immunizations.csv",
			header: []string{"DATE", "PATIENT", "ENCOUNTER", "CODE", "DESCRIPTION", "BASE_COST"},
			count:  opts.Patients,
			row: func(i int) []string {
				return []string{stamp(), pick(patientIDs), pick(encounterIDs), faker.DigitN(3),
					faker.RandomString([]string{"Influenza seasonal injectable", "Td (adult) preservative free"}), money(100, 200)}
			},
		},
		{
			name: "allergies.csv",
			header: []string{"START", "STOP", "PATIENT", "ENCOUNTER", "SYSTEM", "CODE", "DESCRIPTION", "TYPE",
				"CATEGORY", "REACTION1", "DESCRIPTION1", "SEVERITY1", "REACTION2", "DESCRIPTION2", "SEVERITY2"},
			count: opts.Patients / 4,
			row: func(i int) []string {
				return []string{date(), "", pick(patientIDs), pick(encounterIDs), "SNOMED-CT", faker.DigitN(9),
					faker.RandomString([]string{"Allergy to peanut", "Allergy to mold", "Allergy to bee venom"}),
					"allergy", faker.RandomString([]string{"food", "environment"}),
					faker.DigitN(9), "Allergic rash", faker.RandomString([]string{"MILD", "MODERATE", "SEVERE"}), "", "", ""}
			},
		},
		{
			name: "careplans.csv",
			header: []string{"ID", "START", "STOP", "PATIENT", "ENCOUNTER", "CODE", "DESCRIPTION", "REASONCODE",
				"REASONDESCRIPTION"},
			count: opts.Patients / 2,
			row: func(i int) []string {
				return []string{faker.UUID(), date(), "", pick(patientIDs), pick(encounterIDs), faker.DigitN(9),
					faker.RandomString([]string{"Diabetes self management plan", "Respiratory therapy", "Lifecare plan"}), "", ""}
			},
		},
	}

	for _, f := range files {
		if err := writeExtract(filepath.Join(opts.Dir, f.name), f.header, f.count, f.row); err != nil {
			return err
		}
	}
	return nil
}

func writeExtract(path string, header []string, count int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
