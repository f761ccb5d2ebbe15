package models

import (
	"fmt"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"
)

var runtimeMu sync.Mutex

// InitRuntime points onnxruntime_go at the shared library (when given) and
// initializes the environment once per process
func InitRuntime(libraryPath string) error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if onnxruntime.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		onnxruntime.SetSharedLibraryPath(libraryPath)
	}
	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}
	return nil
}

// Output is a flattened float32 model output with its shape
type Output struct {
	Data  []float32
	Shape []int64
}

// ONNXModel wraps an ONNX Runtime session for inference
type ONNXModel struct {
	session     *onnxruntime.DynamicAdvancedSession
	inputNames  []string
	outputNames []string
}

// NewONNXModel creates a new ONNX model from a file. InitRuntime must have
// been called first.
func NewONNXModel(modelPath string) (*ONNXModel, error) {
	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() {
		_ = options.Destroy()
	}()

	// Get input/output information from the model file first
	inputs, outputs, err := onnxruntime.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}

	inputNames := make([]string, len(inputs))
	for i, input := range inputs {
		inputNames[i] = input.Name
	}

	outputNames := make([]string, len(outputs))
	for i, output := range outputs {
		outputNames[i] = output.Name
	}

	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXModel{
		session:     session,
		inputNames:  inputNames,
		outputNames: outputNames,
	}, nil
}

// HasInput reports whether the model declares an input with this name
func (m *ONNXModel) HasInput(name string) bool {
	for _, n := range m.inputNames {
		if n == name {
			return true
		}
	}
	return false
}

// Run runs inference on the model. Inputs are keyed by input name and must be
// [][]int64 or [][]float32.
func (m *ONNXModel) Run(inputs map[string]any) (map[string]Output, error) {
	inputValues := make([]onnxruntime.Value, len(m.inputNames))
	defer func() {
		for _, value := range inputValues {
			if value != nil {
				_ = value.Destroy()
			}
		}
	}()

	for i, name := range m.inputNames {
		input, exists := inputs[name]
		if !exists {
			return nil, fmt.Errorf("missing input: %s", name)
		}

		tensor, err := createTensor(input)
		if err != nil {
			return nil, fmt.Errorf("failed to create tensor for %s: %w", name, err)
		}
		inputValues[i] = tensor
	}

	// nil outputs are allocated by Run
	outputValues := make([]onnxruntime.Value, len(m.outputNames))
	defer func() {
		for _, value := range outputValues {
			if value != nil {
				_ = value.Destroy()
			}
		}
	}()

	if err := m.session.Run(inputValues, outputValues); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	outputs := make(map[string]Output, len(m.outputNames))
	for i, name := range m.outputNames {
		if outputValues[i] == nil {
			continue
		}
		tensor, ok := outputValues[i].(*onnxruntime.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("unsupported output type for %s", name)
		}
		data := tensor.GetData()
		flat := make([]float32, len(data))
		copy(flat, data)
		outputs[name] = Output{
			Data:  flat,
			Shape: append([]int64(nil), tensor.GetShape()...),
		}
	}

	return outputs, nil
}

// createTensor creates a 2-d ONNX tensor from a row-major matrix
func createTensor(input any) (onnxruntime.Value, error) {
	switch v := input.(type) {
	case [][]int64:
		shape, flat := flatten(v)
		tensor, err := onnxruntime.NewTensor(shape, flat)
		if err != nil {
			return nil, err
		}
		return tensor, nil
	case [][]float32:
		shape, flat := flatten(v)
		tensor, err := onnxruntime.NewTensor(shape, flat)
		if err != nil {
			return nil, err
		}
		return tensor, nil
	default:
		return nil, fmt.Errorf("unsupported input type: %T", input)
	}
}

func flatten[T int64 | float32](rows [][]T) (onnxruntime.Shape, []T) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	flat := make([]T, 0, len(rows)*cols)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return onnxruntime.NewShape(int64(len(rows)), int64(cols)), flat
}

// Close releases model resources
func (m *ONNXModel) Close() error {
	if m.session != nil {
		err := m.session.Destroy()
		m.session = nil
		if err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}
	return nil
}

// GetOutputNames returns the names of model outputs
func (m *ONNXModel) GetOutputNames() []string {
	return m.outputNames
}
