package jack

import (
	"errors"
	"strings"
	"testing"
)

func TestAnalyze(t *testing.T) {
	src := `class Main {
  field int x;
  method void set(int v) {
    let x = -v;
    do Output.printInt(x < 3);
    return;
  }
}`
	want := `<class>
  <keyword> class </keyword>
  <identifier> Main </identifier>
  <symbol> { </symbol>
  <classVarDec>
    <keyword> field </keyword>
    <keyword> int </keyword>
    <identifier> x </identifier>
    <symbol> ; </symbol>
  </classVarDec>
  <subroutineDec>
    <keyword> method </keyword>
    <keyword> void </keyword>
    <identifier> set </identifier>
    <symbol> ( </symbol>
    <parameterList>
      <keyword> int </keyword>
      <identifier> v </identifier>
    </parameterList>
    <symbol> ) </symbol>
    <subroutineBody>
      <symbol> { </symbol>
      <statements>
        <letStatement>
          <keyword> let </keyword>
          <identifier> x </identifier>
          <symbol> = </symbol>
          <expression>
            <term>
              <symbol> - </symbol>
              <term>
                <identifier> v </identifier>
              </term>
            </term>
          </expression>
          <symbol> ; </symbol>
        </letStatement>
        <doStatement>
          <keyword> do </keyword>
          <identifier> Output </identifier>
          <symbol> . </symbol>
          <identifier> printInt </identifier>
          <symbol> ( </symbol>
          <expressionList>
            <expression>
              <term>
                <identifier> x </identifier>
              </term>
              <symbol> &lt; </symbol>
              <term>
                <integerConstant> 3 </integerConstant>
              </term>
            </expression>
          </expressionList>
          <symbol> ) </symbol>
          <symbol> ; </symbol>
        </doStatement>
        <returnStatement>
          <keyword> return </keyword>
          <symbol> ; </symbol>
        </returnStatement>
      </statements>
      <symbol> } </symbol>
    </subroutineBody>
  </subroutineDec>
  <symbol> } </symbol>
</class>
`
	var out strings.Builder
	if err := Analyze(strings.NewReader(src), &out); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestAnalyzeEmptyLists(t *testing.T) {
	src := `class Main { function void main() { do Main.run(); return "s"; } }`
	var out strings.Builder
	if err := Analyze(strings.NewReader(src), &out); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	got := out.String()
	for _, fragment := range []string{
		"    <parameterList>\n    </parameterList>\n",
		"          <expressionList>\n          </expressionList>\n",
		"              <stringConstant> s </stringConstant>\n",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("output is missing %q:\n%s", fragment, got)
		}
	}
}

type recordingListener struct {
	events []string
}

func (r *recordingListener) EnterRule(rule string) { r.events = append(r.events, "+"+rule) }
func (r *recordingListener) ExitRule(rule string)  { r.events = append(r.events, "-"+rule) }
func (r *recordingListener) Terminal(token Token)  { r.events = append(r.events, token.String()) }

func TestListenerSeesEveryToken(t *testing.T) {
	src := `class Main { function int f() { return 1; } }`
	listener := &recordingListener{}
	if _, err := CompileString(src, WithListener(listener)); err != nil {
		t.Fatalf("compile: %v", err)
	}
	var terminals []string
	depth := 0
	for _, event := range listener.events {
		switch event[0] {
		case '+':
			depth++
		case '-':
			depth--
			if depth < 0 {
				t.Fatalf("rule closed twice: %v", listener.events)
			}
		default:
			terminals = append(terminals, event)
		}
	}
	if depth != 0 {
		t.Errorf("%d rules left open", depth)
	}
	want := "class Main { function int f ( ) { return 1 ; } }"
	if got := strings.Join(terminals, " "); got != want {
		t.Errorf("terminals = %q; want %q", got, want)
	}
}

func TestAnalyzeReportsErrors(t *testing.T) {
	err := Analyze(strings.NewReader(`class Main { function void f() { let q = 1; return; } }`), &strings.Builder{})
	var undefined *UndefinedIdentifierError
	if !errors.As(err, &undefined) {
		t.Errorf("err = %v; want UndefinedIdentifierError", err)
	}
}
