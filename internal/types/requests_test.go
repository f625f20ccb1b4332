package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptimizeRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     OptimizeRequest
		wantErr bool
	}{
		{
			name:    "valid",
			req:     OptimizeRequest{JobDescription: "Go engineer", ResumeText: "Jane Doe"},
			wantErr: false,
		},
		{
			name:    "missing job description",
			req:     OptimizeRequest{ResumeText: "Jane Doe"},
			wantErr: true,
		},
		{
			name:    "missing resume text",
			req:     OptimizeRequest{JobDescription: "Go engineer"},
			wantErr: true,
		},
		{
			name:    "whitespace only resume",
			req:     OptimizeRequest{JobDescription: "Go engineer", ResumeText: "  \n\t "},
			wantErr: true,
		},
		{
			name:    "bad url",
			req:     OptimizeRequest{JobDescription: "Go engineer", ResumeText: "Jane", JobDescriptionURL: "not a url"},
			wantErr: true,
		},
		{
			name:    "valid url",
			req:     OptimizeRequest{JobDescription: "Go engineer", ResumeText: "Jane", JobDescriptionURL: "https://example.com/jobs/1"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExportRequest_Validate(t *testing.T) {
	assert.Error(t, (&ExportRequest{}).Validate())
	assert.NoError(t, (&ExportRequest{OptimizedResume: &OptimizedResume{}}).Validate())
}
