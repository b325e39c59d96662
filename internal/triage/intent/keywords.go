package intent

import "medcompanion/pkg/model"

// Keyword is a phrase that votes for an intent with the given weight.
type Keyword struct {
	Phrase string
	Weight float64
}

// IntentKeywords is one row of the keyword table. Row order breaks ties.
type IntentKeywords struct {
	Intent   string
	Keywords []Keyword
}

func DefaultKeywordTable() []IntentKeywords {
	return []IntentKeywords{
		{
			Intent: model.IntentEmergencyAlert,
			Keywords: []Keyword{
				{"emergency", 2}, {"ambulance", 2}, {"can't breathe", 2}, {"dying", 2},
				{"urgent help", 2}, {"help immediately", 2}, {"heart attack", 2},
				{"stroke", 2}, {"seizure", 2}, {"unconscious", 2}, {"poison", 2},
				{"not breathing", 2}, {"bleeding heavily", 2},
			},
		},
		{
			Intent: model.IntentCancelAppointment,
			Keywords: []Keyword{
				{"cancel", 2}, {"call off", 2}, {"unschedule", 2}, {"remove my booking", 2},
				{"drop my slot", 2}, {"won't be coming", 2}, {"wont be coming", 2},
				{"can't make it", 2}, {"not coming", 1}, {"withdraw", 1}, {"abort", 1},
			},
		},
		{
			Intent: model.IntentRescheduleAppointment,
			Keywords: []Keyword{
				{"reschedule", 3}, {"move my appointment", 2}, {"change my appointment", 2},
				{"another time", 1}, {"different day", 1},
			},
		},
		{
			Intent: model.IntentBookAppointment,
			Keywords: []Keyword{
				{"book", 2}, {"schedule", 2}, {"reserve", 2}, {"reservation", 2},
				{"see a doctor", 2}, {"see the doctor", 2}, {"see a specialist", 2},
				{"appointment", 1}, {"checkup", 1}, {"check up", 1}, {"consultation", 1},
				{"visit", 1}, {"slot", 1}, {"available", 1},
			},
		},
		{
			Intent: model.IntentReportSymptoms,
			Keywords: []Keyword{
				{"headache", 2}, {"hurts", 2}, {"dizzy", 2}, {"cough", 2}, {"coughing", 2},
				{"nauseous", 2}, {"nausea", 2}, {"rash", 2}, {"vomiting", 2}, {"diarrhea", 2},
				{"runny nose", 2}, {"fever", 1}, {"pain", 1}, {"hurt", 1}, {"sore", 1},
				{"tired", 1}, {"weak", 1}, {"cramps", 1}, {"shivering", 1}, {"blurry", 1},
				{"symptom", 1}, {"symptoms", 1},
			},
		},
		{
			Intent: model.IntentMedicationInfo,
			Keywords: []Keyword{
				{"medication", 2}, {"medicine", 2}, {"pill", 2}, {"pills", 2}, {"dosage", 2},
				{"dose", 2}, {"side effects", 2}, {"paracetamol", 2}, {"ibuprofen", 2},
				{"amoxicillin", 2}, {"aspirin", 2}, {"tylenol", 2}, {"antibiotics", 2},
				{"prescription", 2}, {"meds", 2}, {"drug", 1}, {"syrup", 1},
			},
		},
		{
			Intent: model.IntentGeneralQuery,
			Keywords: []Keyword{
				{"opening hours", 2}, {"visiting hours", 2}, {"address", 2}, {"located", 2},
				{"location", 2}, {"insurance", 2}, {"parking", 2}, {"phone number", 2},
				{"open", 1}, {"contact", 1}, {"how much", 1}, {"cost", 1}, {"price", 1},
				{"pay", 1}, {"pharmacy", 1}, {"wifi", 1},
			},
		},
	}
}
