package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmsportal/internal/models/response_models"
)

func TestSummarize(t *testing.T) {
	s := summarize([]response_models.SyncReport{
		{NuvamaCode: "C100", Updated: 2, Failed: 1},
		{NuvamaCode: "C200", Updated: 1, NotFound: 3},
	})
	assert.Equal(t, 2, s.Accounts)
	assert.Equal(t, 3, s.Updated)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 3, s.NotFound)
}

func TestManageRejectsUnknownActionBeforeConnecting(t *testing.T) {
	cmd := manageCmd()
	cmd.SetArgs([]string{"archive", "--subscription-id", "SIP_1", "--nuvama-code", "C100"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported action")
}

func TestReconcileRequiresAccount(t *testing.T) {
	cmd := reconcileCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nuvama-code")
}
