package registry

// Builtin returns the clinical data model the loader ships with: the Synthea
// extract layout mapped onto the normalized target schema. Declaration order
// doubles as the tie-break order for load scheduling.
func Builtin() []*EntityDefinition {
	return []*EntityDefinition{
		{
			Name:       "organizations",
			Source:     "organizations.csv",
			PrimaryKey: "id",
			Mapping: []FieldMap{
				{Source: "ID", Target: "id"},
				{Source: "NAME", Target: "name"},
				{Source: "ADDRESS", Target: "address"},
				{Source: "CITY", Target: "city"},
				{Source: "STATE", Target: "state"},
				{Source: "ZIP", Target: "zip"},
				{Source: "LAT", Target: "latitude"},
				{Source: "LON", Target: "longitude"},
				{Source: "PHONE", Target: "phone"},
				{Source: "REVENUE", Target: "revenue"},
				{Source: "UTILIZATION", Target: "utilization"},
			},
		},
		{
			Name:       "payers",
			Source:     "payers.csv",
			PrimaryKey: "id",
			Mapping: []FieldMap{
				{Source: "ID", Target: "id"},
				{Source: "NAME", Target: "name"},
				{Source: "OWNERSHIP", Target: "ownership"},
				{Source: "ADDRESS", Target: "address"},
				{Source: "CITY", Target: "city"},
				{Source: "STATE", Target: "state"},
				{Source: "ZIP", Target: "zip"},
				{Source: "PHONE", Target: "phone"},
				{Source: "AMOUNT_COVERED", Target: "amount_covered"},
				{Source: "AMOUNT_UNCOVERED", Target: "amount_uncovered"},
				{Source: "REVENUE", Target: "revenue"},
				{Source: "COVERED_ENCOUNTERS", Target: "covered_encounters"},
				{Source: "UNCOVERED_ENCOUNTERS", Target: "uncovered_encounters"},
				{Source: "COVERED_MEDICATIONS", Target: "covered_medications"},
				{Source: "UNCOVERED_MEDICATIONS", Target: "uncovered_medications"},
				{Source: "COVERED_PROCEDURES", Target: "covered_procedures"},
				{Source: "UNCOVERED_PROCEDURES", Target: "uncovered_procedures"},
				{Source: "COVERED_IMMUNIZATIONS", Target: "covered_immunizations"},
				{Source: "UNCOVERED_IMMUNIZATIONS", Target: "uncovered_immunizations"},
				{Source: "UNIQUE_CUSTOMERS", Target: "unique_customers"},
				{Source: "QOLS_AVG", Target: "qols_avg"},
				{Source: "MEMBER_MONTHS", Target: "member_months"},
			},
		},
		{
			Name:       "patients",
			Source:     "patients.csv",
			PrimaryKey: "id",
			Mapping: []FieldMap{
				{Source: "ID", Target: "id"},
				{Source: "BIRTHDATE", Target: "birth_date"},
				{Source: "DEATHDATE", Target: "death_date"},
				{Source: "SSN", Target: "ssn"},
				{Source: "DRIVERS", Target: "drivers"},
				{Source: "PASSPORT", Target: "passport"},
				{Source: "PREFIX", Target: "prefix"},
				{Source: "FIRST", Target: "first_name"},
				{Source: "MIDDLE", Target: "middle_name"},
				{Source: "LAST", Target: "last_name"},
				{Source: "SUFFIX", Target: "suffix"},
				{Source: "MAIDEN", Target: "maiden_name"},
				{Source: "MARITAL", Target: "marital_status"},
				{Source: "RACE", Target: "race"},
				{Source: "ETHNICITY", Target: "ethnicity"},
				{Source: "GENDER", Target: "gender"},
				{Source: "BIRTHPLACE", Target: "birth_place"},
				{Source: "ADDRESS", Target: "address"},
				{Source: "CITY", Target: "city"},
				{Source: "STATE", Target: "state"},
				{Source: "COUNTY", Target: "county"},
				{Source: "FIPS", Target: "fips"},
				{Source: "ZIP", Target: "zip"},
				{Source: "LAT", Target: "latitude"},
				{Source: "LON", Target: "longitude"},
				{Source: "HEALTHCARE_EXPENSES", Target: "healthcare_expenses"},
				{Source: "HEALTHCARE_COVERAGE", Target: "healthcare_coverage"},
				{Source: "INCOME", Target: "income"},
			},
		},
		{
			Name:       "providers",
			Source:     "providers.csv",
			PrimaryKey: "id",
			Mapping: []FieldMap{
				{Source: "ID", Target: "id"},
				{Source: "ORGANIZATION", Target: "organization_id"},
				{Source: "NAME", Target: "name"},
				{Source: "GENDER", Target: "gender"},
				{Source: "SPECIALITY", Target: "speciality"},
				{Source: "ADDRESS", Target: "address"},
				{Source: "CITY", Target: "city"},
				{Source: "STATE", Target: "state"},
				{Source: "ZIP", Target: "zip"},
				{Source: "LAT", Target: "latitude"},
				{Source: "LON", Target: "longitude"},
				{Source: "ENCOUNTERS", Target: "utilization"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "organization_id", RefEntity: "organizations", RefField: "id"},
			},
		},
		{
			Name:       "encounters",
			Source:     "encounters.csv",
			PrimaryKey: "id",
			Mapping: []FieldMap{
				{Source: "ID", Target: "id"},
				{Source: "START", Target: "start_time"},
				{Source: "STOP", Target: "stop_time"},
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "ORGANIZATION", Target: "organization_id"},
				{Source: "PROVIDER", Target: "provider_id"},
				{Source: "PAYER", Target: "payer_id"},
				{Source: "ENCOUNTERCLASS", Target: "encounter_class"},
				{Source: "CODE", Target: "code"},
				{Source: "DESCRIPTION", Target: "description"},
				{Source: "BASE_ENCOUNTER_COST", Target: "base_encounter_cost"},
				{Source: "TOTAL_CLAIM_COST", Target: "total_claim_cost"},
				{Source: "PAYER_COVERAGE", Target: "payer_coverage"},
				{Source: "REASONCODE", Target: "reason_code"},
				{Source: "REASONDESCRIPTION", Target: "reason_description"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "organization_id", RefEntity: "organizations", RefField: "id"},
				{Field: "provider_id", RefEntity: "providers", RefField: "id"},
				{Field: "payer_id", RefEntity: "payers", RefField: "id"},
			},
		},
		{
			Name:   "conditions",
			Source: "conditions.csv",
			Mapping: []FieldMap{
				{Source: "START", Target: "start_date"},
				{Source: "STOP", Target: "stop_date"},
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "ENCOUNTER", Target: "encounter_id"},
				{Source: "SYSTEM", Target: "system"},
				{Source: "CODE", Target: "code"},
				{Source: "DESCRIPTION", Target: "description"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "encounter_id", RefEntity: "encounters", RefField: "id"},
			},
		},
		{
			Name:   "medications",
			Source: "medications.csv",
			Mapping: []FieldMap{
				{Source: "START", Target: "start_date"},
				{Source: "STOP", Target: "stop_date"},
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "PAYER", Target: "payer_id"},
				{Source: "ENCOUNTER", Target: "encounter_id"},
				{Source: "CODE", Target: "code"},
				{Source: "DESCRIPTION", Target: "description"},
				{Source: "BASE_COST", Target: "base_cost"},
				{Source: "PAYER_COVERAGE", Target: "payer_coverage"},
				{Source: "DISPENSES", Target: "dispenses"},
				{Source: "TOTALCOST", Target: "total_cost"},
				{Source: "REASONCODE", Target: "reason_code"},
				{Source: "REASONDESCRIPTION", Target: "reason_description"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "payer_id", RefEntity: "payers", RefField: "id", Nullable: true},
				{Field: "encounter_id", RefEntity: "encounters", RefField: "id"},
			},
		},
		{
			Name:   "procedures",
			Source: "procedures.csv",
			Mapping: []FieldMap{
				{Source: "START", Target: "start_date"},
				{Source: "STOP", Target: "stop_date"},
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "ENCOUNTER", Target: "encounter_id"},
				{Source: "SYSTEM", Target: "system"},
				{Source: "CODE", Target: "code"},
				{Source: "DESCRIPTION", Target: "description"},
				{Source: "BASE_COST", Target: "base_cost"},
				{Source: "REASONCODE", Target: "reason_code"},
				{Source: "REASONDESCRIPTION", Target: "reason_description"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "encounter_id", RefEntity: "encounters", RefField: "id"},
			},
		},
		{
			Name:   "observations",
			Source: "observations.csv",
			Mapping: []FieldMap{
				{Source: "DATE", Target: "observed_at"},
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "ENCOUNTER", Target: "encounter_id"},
				{Source: "CATEGORY", Target: "category"},
				{Source: "CODE", Target: "code"},
				{Source: "DESCRIPTION", Target: "description"},
				{Source: "VALUE", Target: "value"},
				{Source: "UNITS", Target: "units"},
				{Source: "TYPE", Target: "value_type"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "encounter_id", RefEntity: "encounters", RefField: "id", Nullable: true},
			},
		},
		{
			Name:   "immunizations",
			Source: "immunizations.csv",
			Mapping: []FieldMap{
				{Source: "DATE", Target: "administered_at"},
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "ENCOUNTER", Target: "encounter_id"},
				{Source: "CODE", Target: "code"},
				{Source: "DESCRIPTION", Target: "description"},
				{Source: "BASE_COST", Target: "base_cost"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "encounter_id", RefEntity: "encounters", RefField: "id"},
			},
		},
		{
			Name:   "allergies",
			Source: "allergies.csv",
			Mapping: []FieldMap{
				{Source: "START", Target: "start_date"},
				{Source: "STOP", Target: "stop_date"},
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "ENCOUNTER", Target: "encounter_id"},
				{Source: "SYSTEM", Target: "system"},
				{Source: "CODE", Target: "code"},
				{Source: "DESCRIPTION", Target: "description"},
				{Source: "TYPE", Target: "allergy_type"},
				{Source: "CATEGORY", Target: "category"},
				{Source: "REACTION1", Target: "reaction_1"},
				{Source: "DESCRIPTION1", Target: "reaction_1_description"},
				{Source: "SEVERITY1", Target: "reaction_1_severity"},
				{Source: "REACTION2", Target: "reaction_2"},
				{Source: "DESCRIPTION2", Target: "reaction_2_description"},
				{Source: "SEVERITY2", Target: "reaction_2_severity"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "encounter_id", RefEntity: "encounters", RefField: "id"},
			},
		},
		{
			Name:       "care_plans",
			Source:     "careplans.csv",
			PrimaryKey: "id",
			Mapping: []FieldMap{
				{Source: "ID", Target: "id"},
				{Source: "START", Target: "start_date"},
				{Source: "STOP", Target: "stop_date"},
				{Source: "PATIENT", Target: "patient_id"},
				{Source: "ENCOUNTER", Target: "encounter_id"},
				{Source: "CODE", Target: "code"},
				{Source: "DESCRIPTION", Target: "description"},
				{Source: "REASONCODE", Target: "reason_code"},
				{Source: "REASONDESCRIPTION", Target: "reason_description"},
			},
			ForeignKeys: []ForeignKey{
				{Field: "patient_id", RefEntity: "patients", RefField: "id"},
				{Field: "encounter_id", RefEntity: "encounters", RefField: "id"},
			},
		},
	}
}
