package classifier

// ClassifierStub returns a fixed Analysis/Err, or panics with PanicValue when set
type ClassifierStub struct {
	Analysis   Analysis
	Err        error
	PanicValue interface{}
}

func (stub ClassifierStub) Classify(text string) (Analysis, error) {
	if stub.PanicValue != nil {
		panic(stub.PanicValue)
	}
	return stub.Analysis, stub.Err
}
