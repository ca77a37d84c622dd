package xosc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/xosc/distribution"
	"github.com/ardnew/xosc/param"
)

func TestDistribution_Deterministic(t *testing.T) {
	doc := load(t, "sweep.xosc")

	spec, err := Distribution(doc)
	if err != nil {
		t.Fatalf("Distribution() error = %v", err)
	}

	want := distribution.Spec{Axes: []distribution.Axis{
		distribution.Single{
			Parameter: "EgoSpeed",
			Range:     &distribution.Range{Lower: 10, Upper: 20, Step: 5},
		},
		distribution.Single{
			Parameter: "Lane",
			Set:       &distribution.Set{Values: []string{"-1", "-2"}},
		},
		distribution.Multi{Sets: []distribution.ValueSet{
			{Assignments: []param.Assignment{{Name: "Gap", Value: "30"}}},
			{Assignments: []param.Assignment{{Name: "Gap", Value: "50"}}},
		}},
	}}

	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("Distribution() (-want +got):\n%s", diff)
	}

	file, err := ScenarioFile(doc)
	if err != nil || file != "cut-in.xosc" {
		t.Errorf("ScenarioFile() = %q, %v", file, err)
	}
}

func TestDistribution_Stochastic(t *testing.T) {
	spec, err := Distribution(load(t, "stochastic.xosc"))
	if err != nil {
		t.Fatalf("Distribution() error = %v", err)
	}

	if spec.Seed == nil || *spec.Seed != 42 {
		t.Fatalf("Seed = %v, want 42", spec.Seed)
	}

	if len(spec.Axes) != 1 {
		t.Fatalf("len(Axes) = %d, want 1", len(spec.Axes))
	}

	sto, ok := spec.Axes[0].(distribution.Stochastic)
	if !ok {
		t.Fatalf("Axes[0] is %T, want distribution.Stochastic", spec.Axes[0])
	}

	want := distribution.Stochastic{
		Runs: 4,
		Variables: []distribution.Variable{
			{Parameter: "EgoSpeed", Law: distribution.Normal{
				Mean: 20, StdDev: 2,
				Bounds: &distribution.Bounds{Lower: 10, Upper: 30},
			}},
			{Parameter: "Gap", Law: distribution.Uniform{Lower: 10, Upper: 60}},
			{Parameter: "Lane", Law: distribution.ProbabilitySet{Elements: []distribution.Weighted{
				{Value: "-1", Weight: 3},
				{Value: "-2", Weight: 1},
			}}},
		},
	}

	if diff := cmp.Diff(want, sto); diff != "" {
		t.Errorf("Stochastic (-want +got):\n%s", diff)
	}
}

func TestDistribution_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "not a distribution",
			doc:     `<OpenSCENARIO><Storyboard/></OpenSCENARIO>`,
			wantErr: ErrMalformed,
		},
		{
			name:    "empty",
			doc:     `<OpenSCENARIO><ParameterValueDistribution><Deterministic/></ParameterValueDistribution></OpenSCENARIO>`,
			wantErr: distribution.ErrEmptyDistribution,
		},
		{
			name: "range without limits",
			doc: `<OpenSCENARIO><ParameterValueDistribution><Deterministic>
				<DeterministicSingleParameterDistribution parameterName="x">
					<DistributionRange stepWidth="1"/>
				</DeterministicSingleParameterDistribution>
			</Deterministic></ParameterValueDistribution></OpenSCENARIO>`,
			wantErr: ErrMalformed,
		},
		{
			name: "non-numeric step",
			doc: `<OpenSCENARIO><ParameterValueDistribution><Deterministic>
				<DeterministicSingleParameterDistribution parameterName="x">
					<DistributionRange stepWidth="fast"><Range lowerLimit="0" upperLimit="1"/></DistributionRange>
				</DeterministicSingleParameterDistribution>
			</Deterministic></ParameterValueDistribution></OpenSCENARIO>`,
			wantErr: ErrMalformed,
		},
		{
			name: "missing law",
			doc: `<OpenSCENARIO><ParameterValueDistribution>
				<Stochastic numberOfTestRuns="2"><StochasticDistribution parameterName="x"/></Stochastic>
			</ParameterValueDistribution></OpenSCENARIO>`,
			wantErr: ErrMalformed,
		},
		{
			name: "fractional runs",
			doc: `<OpenSCENARIO><ParameterValueDistribution>
				<Stochastic numberOfTestRuns="2.5">
					<StochasticDistribution parameterName="x"><UniformDistribution><Range lowerLimit="0" upperLimit="1"/></UniformDistribution></StochasticDistribution>
				</Stochastic>
			</ParameterValueDistribution></OpenSCENARIO>`,
			wantErr: ErrMalformed,
		},
		{
			name: "negative runs",
			doc: `<OpenSCENARIO><ParameterValueDistribution>
				<Stochastic numberOfTestRuns="-1"/>
			</ParameterValueDistribution></OpenSCENARIO>`,
			wantErr: ErrMalformed,
		},
		{
			name: "negative seed",
			doc: `<OpenSCENARIO><ParameterValueDistribution>
				<Stochastic numberOfTestRuns="2" randomSeed="-3"/>
			</ParameterValueDistribution></OpenSCENARIO>`,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.doc), tt.name)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			if _, err := Distribution(doc); !errors.Is(err, tt.wantErr) {
				t.Errorf("Distribution() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDistribution_UserDefined(t *testing.T) {
	doc, _ := Parse([]byte(`<OpenSCENARIO><ParameterValueDistribution>
		<Stochastic numberOfTestRuns="2">
			<StochasticDistribution parameterName="x">
				<UserDefinedDistribution type="beta">a=2</UserDefinedDistribution>
			</StochasticDistribution>
		</Stochastic>
	</ParameterValueDistribution></OpenSCENARIO>`), "")

	spec, err := Distribution(doc)
	if err != nil {
		t.Fatalf("Distribution() error = %v", err)
	}

	if err := spec.Validate(); !errors.Is(err, distribution.ErrUnsupportedDistribution) {
		t.Errorf("Validate() error = %v, want %v", err, distribution.ErrUnsupportedDistribution)
	}
}
