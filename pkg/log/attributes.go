// Standard attribute keys for Gaussian process operations. Using the same keys
// everywhere keeps fit/predict logs filterable. Keys follow a dotted
// "category.name" convention.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type, e.g. "GaussianProcessRegressor".
	ModelNameKey = "model.name"

	// OperationKey is the operation being performed (see Operation* values).
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or subsystem emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase (training, inference).
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey is the number of training rows.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// TestSamplesKey is the number of rows a prediction was requested for.
	TestSamplesKey = "data.test_samples"

	// BatchSizeKey is the number of test rows evaluated per block.
	BatchSizeKey = "data.batch_size"
)

// Kernel and regressor configuration
const (
	// KernelKindKey is the kernel variant ("rbf", "periodic", "rational_quadratic").
	KernelKindKey = "kernel.kind"

	// KernelParamsKey is the kernel parameter map.
	KernelParamsKey = "kernel.params"

	// NoiseVarianceKey is the diagonal jitter added to the Gram matrix.
	NoiseVarianceKey = "gp.noise_variance"

	// NormalizeYKey reports whether targets are standardised before fitting.
	NormalizeYKey = "gp.normalize_y"

	// DrawsKey is the number of posterior realisations requested.
	DrawsKey = "gp.draws"
)

// Results and performance
const (
	// LogMarginalLikelihoodKey records the model evidence after a fit.
	LogMarginalLikelihoodKey = "gp.log_marginal_likelihood"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² for Score calls.
	R2ScoreKey = "metrics.r2_score"
)

// Error Context
const (
	// ErrorCodeKey is a structured error code (see Error* values).
	ErrorCodeKey = "error.code"

	// ErrorTypeKey is the Go type name of the error.
	ErrorTypeKey = "error.type"

	// FailedRowKey is the Cholesky row that produced a non-positive pivot.
	FailedRowKey = "linalg.failed_row"

	// SuggestionKey is a remediation hint, e.g. "increase noise_variance".
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit               = "fit"
	OperationPredict           = "predict"
	OperationPredictStd        = "predict_std"
	OperationPredictCovariance = "predict_covariance"
	OperationSample            = "sample"
	OperationSampleJoint       = "sample_joint"
	OperationScore             = "score"
	OperationImportState       = "import_state"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	ErrorNotFitted           = "NOT_FITTED"
	ErrorShape               = "SHAPE_ERROR"
	ErrorNotPositiveDefinite = "NOT_POSITIVE_DEFINITE"
	ErrorInvalidInput        = "INVALID_INPUT"
)
