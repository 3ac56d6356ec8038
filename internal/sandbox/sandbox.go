package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/quizforge/quizforge/internal/domain"
)

// DefaultTimeout bounds one submission's full test run
const DefaultTimeout = 10 * time.Second

// Result is the outcome of running a submission against its test cases.
// SetupError is set when the code never reached the test cases (syntax
// error, no function definition, error during definition); Cases is
// empty in that case.
type Result struct {
	SetupError string              `json:"setup_error"`
	Cases      []domain.CaseResult `json:"cases"`
}

// CodeSandbox executes untrusted Python submissions in isolation.
// Implementations must enforce a wall-clock timeout on Run.
type CodeSandbox interface {
	// Run executes the code's first function against each test case
	Run(ctx context.Context, code string, cases []domain.TestCase) (*Result, error)

	// Available reports whether the backend can execute code right now
	Available(ctx context.Context) bool
}

// harnessScript drives a submission inside the sandbox: syntax check,
// first function definition lookup, then one call per test case with
// captured stdout/stderr. Case inputs and expected values arrive as
// text and are decoded back to real values before the call, so a case
// like {"input": "5"} reaches the function as the integer 5. It prints
// a single JSON document matching Result so both backends share one
// protocol.
const harnessScript = `import ast
import io
import json
from contextlib import redirect_stdout, redirect_stderr


def decode_value(value):
    if not isinstance(value, str):
        return value
    try:
        return json.loads(value)
    except Exception:
        pass
    try:
        return ast.literal_eval(value)
    except Exception:
        return value


def main():
    with open("solution.py") as f:
        code = f.read()
    with open("cases.json") as f:
        cases = json.load(f)

    out = {"setup_error": "", "cases": []}

    try:
        tree = ast.parse(code)
    except SyntaxError as e:
        out["setup_error"] = "Syntax error: %s. Check line %s, column %s." % (e.msg, e.lineno, e.offset)
        print(json.dumps(out))
        return

    function_name = None
    for node in ast.walk(tree):
        if isinstance(node, ast.FunctionDef):
            function_name = node.name
            break
    if not function_name:
        out["setup_error"] = "Could not find a function definition in your code."
        print(json.dumps(out))
        return

    namespace = {}
    try:
        exec(code, namespace)
    except Exception as e:
        out["setup_error"] = "Error defining function: %s" % e
        print(json.dumps(out))
        return

    function = namespace[function_name]

    for case in cases:
        result = {
            "input": case["input"],
            "expected": case["expected"],
            "actual": "",
            "passed": False,
            "error": "",
        }
        argument = decode_value(case["input"])
        expected = decode_value(case["expected"])
        stdout_buffer = io.StringIO()
        stderr_buffer = io.StringIO()
        try:
            with redirect_stdout(stdout_buffer), redirect_stderr(stderr_buffer):
                actual = function(argument)
            result["actual"] = str(actual).strip()
            result["passed"] = result["actual"] == str(expected).strip()
        except Exception as e:
            result["error"] = "%s: %s" % (type(e).__name__, e)
        out["cases"].append(result)

    print(json.dumps(out))


main()
`

// encodeCases renders test cases as the harness's cases.json
func encodeCases(cases []domain.TestCase) ([]byte, error) {
	type harnessCase struct {
		Input    string `json:"input"`
		Expected string `json:"expected"`
	}
	out := make([]harnessCase, 0, len(cases))
	for _, c := range cases {
		out = append(out, harnessCase{Input: c.Input, Expected: c.Expected})
	}
	return json.Marshal(out)
}

// parseHarnessOutput decodes the harness's JSON document. The harness
// prints it as the last line of stdout; anything before it is stray
// output from the submission itself.
func parseHarnessOutput(stdout string) (*Result, error) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil, fmt.Errorf("empty harness output")
	}

	lines := strings.Split(trimmed, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var result Result
		if err := json.Unmarshal([]byte(line), &result); err == nil {
			return &result, nil
		}
	}
	return nil, fmt.Errorf("no harness result in output: %s", truncateOutput(trimmed))
}

func truncateOutput(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
