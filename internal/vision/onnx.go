package vision

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initRuntime initializes the ONNX runtime environment once per process.
// libPath optionally points at the onnxruntime shared library; when empty
// the library default is used.
func initRuntime(libPath string) error {
	ortInitOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return fmt.Errorf("failed to initialize onnxruntime: %w", ortInitErr)
	}
	return nil
}

// onnxSession wraps an ONNX session with fixed input/output tensors.
// The tensors are reused across runs, so runs are serialized.
type onnxSession struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newONNXSession(modelPath, inputName, outputName string, inputShape, outputShape ort.Shape) (*onnxSession, error) {
	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session for %s: %w", modelPath, err)
	}

	return &onnxSession{
		session: session,
		input:   input,
		output:  output,
	}, nil
}

// run copies data into the input tensor, executes the session and returns
// a copy of the output tensor data.
func (s *onnxSession) run(data []float32) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.input.GetData()
	if len(data) != len(in) {
		return nil, fmt.Errorf("input size mismatch: got %d, want %d", len(data), len(in))
	}
	copy(in, data)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	out := s.output.GetData()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

// Close releases the session and its tensors.
func (s *onnxSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	return nil
}
