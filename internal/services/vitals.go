package services

// Vitals payloads mirror the feature vectors the offline-trained models were
// fit on. Each field carries a declared valid range; requests outside any
// range are rejected before scoring.

type AcuteVitals struct {
	Age      int     `json:"age"`
	Sex      int     `json:"sex"`
	CP       int     `json:"cp"`
	Trestbps int     `json:"trestbps"`
	Chol     int     `json:"chol"`
	FBS      int     `json:"fbs"`
	Restecg  int     `json:"restecg"`
	Thalach  int     `json:"thalach"`
	Exang    int     `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    int     `json:"slope"`
	CA       int     `json:"ca"`
	Thal     int     `json:"thal"`
}

type LifestyleVitals struct {
	Age         int     `json:"age"`
	Gender      int     `json:"gender"`
	Height      float64 `json:"height"`
	Weight      float64 `json:"weight"`
	ApHi        int     `json:"ap_hi"`
	ApLo        int     `json:"ap_lo"`
	Cholesterol int     `json:"cholesterol"`
	Gluc        int     `json:"gluc"`
	Smoke       int     `json:"smoke"`
	Alco        int     `json:"alco"`
	Active      int     `json:"active"`
}

type WellnessVitals struct {
	StressLevel int     `json:"stress_level"`
	SleepHours  float64 `json:"sleep_hours"`
	DailySteps  int     `json:"daily_steps"`
	WaterIntake float64 `json:"water_intake"`
	HRV         int     `json:"hrv"`
	Age         int     `json:"age"`
	BMI         float64 `json:"bmi"`
}

type fieldCheck struct {
	name     string
	value    float64
	min, max float64
}

func outOfRange(checks []fieldCheck) []string {
	var fields []string
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			fields = append(fields, c.name)
		}
	}
	return fields
}

func (v AcuteVitals) invalidFields() []string {
	return outOfRange([]fieldCheck{
		{"age", float64(v.Age), 1, 120},
		{"sex", float64(v.Sex), 0, 1},
		{"cp", float64(v.CP), 0, 3},
		{"trestbps", float64(v.Trestbps), 50, 300},
		{"chol", float64(v.Chol), 50, 700},
		{"fbs", float64(v.FBS), 0, 1},
		{"restecg", float64(v.Restecg), 0, 2},
		{"thalach", float64(v.Thalach), 40, 250},
		{"exang", float64(v.Exang), 0, 1},
		{"oldpeak", v.Oldpeak, 0, 10},
		{"slope", float64(v.Slope), 0, 2},
		{"ca", float64(v.CA), 0, 4},
		{"thal", float64(v.Thal), 0, 3},
	})
}

func (v AcuteVitals) features() map[string]float64 {
	return map[string]float64{
		"age":      float64(v.Age),
		"sex":      float64(v.Sex),
		"cp":       float64(v.CP),
		"trestbps": float64(v.Trestbps),
		"chol":     float64(v.Chol),
		"fbs":      float64(v.FBS),
		"restecg":  float64(v.Restecg),
		"thalach":  float64(v.Thalach),
		"exang":    float64(v.Exang),
		"oldpeak":  v.Oldpeak,
		"slope":    float64(v.Slope),
		"ca":       float64(v.CA),
		"thal":     float64(v.Thal),
	}
}

func (v LifestyleVitals) invalidFields() []string {
	return outOfRange([]fieldCheck{
		{"age", float64(v.Age), 1, 120},
		{"gender", float64(v.Gender), 1, 2},
		{"height", v.Height, 100, 250},
		{"weight", v.Weight, 20, 300},
		{"ap_hi", float64(v.ApHi), 50, 300},
		{"ap_lo", float64(v.ApLo), 30, 200},
		{"cholesterol", float64(v.Cholesterol), 1, 3},
		{"gluc", float64(v.Gluc), 1, 3},
		{"smoke", float64(v.Smoke), 0, 1},
		{"alco", float64(v.Alco), 0, 1},
		{"active", float64(v.Active), 0, 1},
	})
}

// features converts to the lifestyle model's training representation: age in
// days rather than years, plus a derived bmi column.
func (v LifestyleVitals) features() map[string]float64 {
	heightM := v.Height / 100
	return map[string]float64{
		"age":         float64(v.Age) * 365,
		"gender":      float64(v.Gender),
		"height":      v.Height,
		"weight":      v.Weight,
		"ap_hi":       float64(v.ApHi),
		"ap_lo":       float64(v.ApLo),
		"cholesterol": float64(v.Cholesterol),
		"gluc":        float64(v.Gluc),
		"smoke":       float64(v.Smoke),
		"alco":        float64(v.Alco),
		"active":      float64(v.Active),
		"bmi":         v.Weight / (heightM * heightM),
	}
}

func (v WellnessVitals) invalidFields() []string {
	return outOfRange([]fieldCheck{
		{"stress_level", float64(v.StressLevel), 0, 10},
		{"sleep_hours", v.SleepHours, 0, 24},
		{"daily_steps", float64(v.DailySteps), 0, 100000},
		{"water_intake", v.WaterIntake, 0, 20},
		{"hrv", float64(v.HRV), 10, 300},
		{"age", float64(v.Age), 1, 120},
		{"bmi", v.BMI, 10, 80},
	})
}

func (v WellnessVitals) features() map[string]float64 {
	return map[string]float64{
		"stress_level": float64(v.StressLevel),
		"sleep_hours":  v.SleepHours,
		"daily_steps":  float64(v.DailySteps),
		"water_intake": v.WaterIntake,
		"hrv":          float64(v.HRV),
		"age":          float64(v.Age),
		"bmi":          v.BMI,
	}
}
