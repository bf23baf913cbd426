// Package errors はgaussproc全体のエラーハンドリングと警告システムを提供します。
// 全てのエラー型はcockroachdb/errorsでスタックトレースを付与して返され、
// zerologのイベントへ構造化情報として書き出せます。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("gaussproc-warning: %v\n", w)
	}
	// set by pkg/log; kept as a func to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the process-wide warning handler.
// Passing a no-op function silences warnings:
//
//	errors.SetWarningHandler(func(w error) {})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings to a zerolog-backed sink. nil restores
// the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. Warnings never change control flow.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// NegativeVarianceWarning は予測分散が浮動小数点の打ち消しで明確に負になり、
// 0にクリップされたことを示します。
type NegativeVarianceWarning struct {
	Index    int     // test point index
	Variance float64 // value before clipping
	Prior    float64 // k(x, x) at that point
}

func (w *NegativeVarianceWarning) Error() string {
	return fmt.Sprintf("predictive variance %.6g at test point %d clipped to 0 (prior variance %.6g). Consider increasing noise_variance.",
		w.Variance, w.Index, w.Prior)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *NegativeVarianceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("index", w.Index).
		Float64("variance", w.Variance).
		Float64("prior", w.Prior).
		Str("type", "NegativeVarianceWarning")
}

// NewNegativeVarianceWarning creates a NegativeVarianceWarning.
func NewNegativeVarianceWarning(index int, variance, prior float64) *NegativeVarianceWarning {
	return &NegativeVarianceWarning{Index: index, Variance: variance, Prior: prior}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で予測系メソッドを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("gaussproc: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// ShapeError は行列の形状が不正な場合のエラーです。
// ragged rows on construction, X/y length mismatch, non-square input to a
// factorisation, or a right-hand side of the wrong length.
type ShapeError struct {
	Op       string
	Reason   string
	Expected []int
	Got      []int
}

func (e *ShapeError) Error() string {
	if len(e.Expected) == 0 && len(e.Got) == 0 {
		return fmt.Sprintf("gaussproc: %s: shape error: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("gaussproc: %s: shape error: %s. Expected shape %v, got %v", e.Op, e.Reason, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ShapeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Ints("expected", e.Expected).
		Ints("got", e.Got).
		Str("type", "ShapeError")
}

// NewShapeError は新しいShapeErrorを作成し、スタックトレースを付与します。
func NewShapeError(op, reason string, expected, got []int) error {
	return errors.WithStack(&ShapeError{Op: op, Reason: reason, Expected: expected, Got: got})
}

// IndexError is an out-of-bounds Matrix access. It always indicates a bug in
// the caller.
type IndexError struct {
	Op   string
	Row  int
	Col  int
	Rows int
	Cols int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("gaussproc: %s: index (%d, %d) out of range for %dx%d matrix", e.Op, e.Row, e.Col, e.Rows, e.Cols)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *IndexError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("row", e.Row).
		Int("col", e.Col).
		Int("rows", e.Rows).
		Int("cols", e.Cols).
		Str("type", "IndexError")
}

// NewIndexError は新しいIndexErrorを作成し、スタックトレースを付与します。
func NewIndexError(op string, row, col, rows, cols int) error {
	return errors.WithStack(&IndexError{Op: op, Row: row, Col: col, Rows: rows, Cols: cols})
}

// NotPositiveDefiniteError はCholesky分解の対角ピボットが0以下になった場合のエラーです。
// Row is the offending row; Value is the quantity that would have gone under
// the square root.
type NotPositiveDefiniteError struct {
	Op    string
	Row   int
	Value float64
}

func (e *NotPositiveDefiniteError) Error() string {
	return fmt.Sprintf("gaussproc: %s: matrix is not positive definite: pivot %.6g at row %d. Consider increasing noise_variance",
		e.Op, e.Value, e.Row)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotPositiveDefiniteError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("row", e.Row).
		Float64("pivot", e.Value).
		Str("type", "NotPositiveDefiniteError")
}

// NewNotPositiveDefiniteError は新しいNotPositiveDefiniteErrorを作成し、スタックトレースを付与します。
func NewNotPositiveDefiniteError(op string, row int, value float64) error {
	return errors.WithStack(&NotPositiveDefiniteError{Op: op, Row: row, Value: value})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("gaussproc: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gaussproc: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// NumericalInstabilityError はNaNやInfなど数値的に扱えない値を検出した場合のエラーです。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("gaussproc: numerical instability detected in %s. Values: [%s]", e.Operation, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// UnwrapAll は最も内側の原因となるエラーを返します。
func UnwrapAll(err error) error {
	return errors.UnwrapAll(err)
}

// ErrEmptyData is returned when a fit or prediction receives zero rows.
var ErrEmptyData = New("empty data")
