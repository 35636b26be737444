package entity

// ResultTag is the terminal outcome of one form-fill request.
type ResultTag string

const (
	ResultPass    ResultTag = "PASS"
	ResultFail    ResultTag = "FAIL"
	ResultDone    ResultTag = "DONE"
	ResultTimeout ResultTag = "TIMEOUT"
	ResultError   ResultTag = "ERROR"
)

func (t ResultTag) String() string {
	return string(t)
}

// StatusOK is the only status a produced response carries.
const StatusOK = "ok"

// ClassifiedResult is what the classifier reduces a transcript or a failure to.
type ClassifiedResult struct {
	Result ResultTag
	Final  string
	Steps  []string
}

// FormFillResponse is the wire shape returned to the caller.
type FormFillResponse struct {
	Status string    `json:"status"`
	Result ResultTag `json:"result"`
	Final  string    `json:"final"`
	Steps  []string  `json:"steps"`
	Model  string    `json:"model"`
}

func NewFormFillResponse(res ClassifiedResult, model string) FormFillResponse {
	steps := res.Steps
	if steps == nil {
		steps = []string{}
	}
	return FormFillResponse{
		Status: StatusOK,
		Result: res.Result,
		Final:  res.Final,
		Steps:  steps,
		Model:  model,
	}
}
