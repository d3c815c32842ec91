// Package activation implements the elementwise activation functions used
// by network layers, each paired with the in-place gradient transform its
// backward pass needs. Vectorizable entries dispatch to
// github.com/ajroetker/go-highway/hwy/contrib/{activation,math}; the rest
// (softmax, softplus, softsign, hard_sigmoid, exponential) are written
// directly against the scalar math library, matching the upstream neural
// network engine's own choice to leave these "seldom used" functions
// unvectorized.
package activation

import (
	"fmt"
	"plugin"
	"reflect"
	"sync"
)

// Func applies an activation in place over y.
type Func func(y []float32)

// DerivativeFunc multiplies grad in place by the activation's derivative,
// evaluated at the already-computed activation output a. This is the
// "multiply in place" convention used throughout backpropagation: grad
// enters holding the gradient flowing back from the layer above and
// leaves holding that gradient times f'(a).
type DerivativeFunc func(a, grad []float32)

// Activation is a named, registered activation function together with its
// derivative.
type Activation struct {
	Name       string
	Apply      Func
	Derivative DerivativeFunc
}

var (
	mu       sync.RWMutex
	registry = map[string]Activation{}
)

func register(a Activation) {
	registry[a.Name] = a
}

func init() {
	register(Activation{Name: "linear", Apply: linear, Derivative: linearDerivative})
	register(Activation{Name: "relu", Apply: relu, Derivative: reluDerivative})
	register(Activation{Name: "sigmoid", Apply: sigmoid, Derivative: sigmoidDerivative})
	register(Activation{Name: "tanh", Apply: tanhAct, Derivative: tanhDerivative})
	register(Activation{Name: "softmax", Apply: softmax, Derivative: softmaxDerivative})
	register(Activation{Name: "softplus", Apply: softplus, Derivative: softplusDerivative})
	register(Activation{Name: "softsign", Apply: softsign, Derivative: softsignDerivative})
	register(Activation{Name: "hard_sigmoid", Apply: hardSigmoid, Derivative: hardSigmoidDerivative})
	register(Activation{Name: "exponential", Apply: exponential, Derivative: exponentialDerivative})
	register(Activation{Name: "elu", Apply: elu, Derivative: eluDerivative})
}

// ByName looks up a registered activation, including ones added with
// Register or LoadPlugin.
func ByName(name string) (Activation, error) {
	mu.RLock()
	defer mu.RUnlock()
	a, ok := registry[name]
	if !ok {
		return Activation{}, fmt.Errorf("activation: unknown activation %q", name)
	}
	return a, nil
}

// NameOf is the inverse of ByName: it returns the registered name whose
// Apply function is f, comparing function values by their code pointer
// since Go funcs are not otherwise comparable. Mirrors the original
// engine's get_activation_name.
func NameOf(f Func) (string, error) {
	mu.RLock()
	defer mu.RUnlock()
	target := reflect.ValueOf(f).Pointer()
	for _, a := range registry {
		if reflect.ValueOf(a.Apply).Pointer() == target {
			return a.Name, nil
		}
	}
	return "", fmt.Errorf("activation: no registered activation matches the given function")
}

// Register adds or replaces a named activation. Used both for user-defined
// activations and internally by LoadPlugin.
func Register(a Activation) {
	mu.Lock()
	defer mu.Unlock()
	register(a)
}

// LoadPlugin resolves an activation from a Go plugin, using the convention
// "symbol@path.so": the plugin at path.so must export a func([]float32)
// named symbol and a func([]float32, []float32) named symbol+"_derivative".
// This is the Go-native analogue of the original engine's
// dlopen/dlsym("symbol@library.so") mechanism. The resolved pair is
// registered under symbol so that ByName(symbol) finds it afterward.
func LoadPlugin(spec string) error {
	symbol, path, err := splitPluginSpec(spec)
	if err != nil {
		return err
	}

	p, err := plugin.Open(path)
	if err != nil {
		return fmt.Errorf("activation: cannot open plugin %q: %w", path, err)
	}

	applySym, err := p.Lookup(symbol)
	if err != nil {
		return fmt.Errorf("activation: plugin %q has no symbol %q: %w", path, symbol, err)
	}
	apply, ok := applySym.(func([]float32))
	if !ok {
		return fmt.Errorf("activation: symbol %q in %q has wrong type", symbol, path)
	}

	derivSym, err := p.Lookup(symbol + "_derivative")
	if err != nil {
		return fmt.Errorf("activation: plugin %q has no symbol %q: %w", path, symbol+"_derivative", err)
	}
	deriv, ok := derivSym.(func([]float32, []float32))
	if !ok {
		return fmt.Errorf("activation: symbol %q in %q has wrong type", symbol+"_derivative", path)
	}

	Register(Activation{Name: symbol, Apply: apply, Derivative: deriv})
	return nil
}

func splitPluginSpec(spec string) (symbol, path string, err error) {
	for i := len(spec) - 1; i >= 0; i-- {
		if spec[i] == '@' {
			return spec[:i], spec[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("activation: plugin spec %q must be \"symbol@library.so\"", spec)
}
