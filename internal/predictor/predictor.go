// Package predictor wraps the externally trained placement model behind
// a narrow capability interface. Training, tuning, and model selection
// happen offline; this package only loads the resulting artifact and
// answers predictions through it.
package predictor

// Model is the opaque trained capability consumed by the inference
// path: standardize a raw feature vector, predict a host label for it,
// and enumerate the labels it can emit. Which algorithm sits behind it
// is irrelevant to callers and must not leak into the contract.
type Model interface {
	// Transform standardizes a raw fixed-order feature vector.
	Transform(raw []float64) ([]float64, error)

	// Predict returns a host label for a raw fixed-order feature vector.
	Predict(features []float64) (string, error)

	// Classes returns the host labels the model can predict.
	Classes() []string
}

// Metrics carries the offline evaluation quality of the loaded model.
type Metrics struct {
	ModelName string  `json:"model_name"`
	R2        float64 `json:"r2"`
	MSE       float64 `json:"mse"`
	MAE       float64 `json:"mae"`
}
