package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	volume, err := models.Ether("2")
	require.NoError(t, err)
	fees, err := models.Ether("0.05")
	require.NoError(t, err)

	err = writeSummary(&buf, services.PlatformSummary{
		TotalInvestmentVolume: volume,
		TreasuryBalance:       fees,
		Owner:                 "0xowner",
		Treasury:              "0xtreasury",
		FeeBps:                250,
		PropertyCount:         3,
		Sequence:              9,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "0xtreasury")
	assert.Contains(t, out, "250 bps")
	assert.Contains(t, out, "2 ETH")
	assert.Contains(t, out, "0.05 ETH")
	assert.Contains(t, out, "9")
}

func TestWriteProperties(t *testing.T) {
	var buf bytes.Buffer
	price, err := models.Ether("0.1")
	require.NoError(t, err)

	err = writeProperties(&buf, []models.Property{
		{ID: 1, Name: "Canal House", Status: models.StatusOpen, TotalTokens: 1000, TokensSold: 10, TokenPrice: price, Owner: "0xowner"},
		{ID: 2, Name: "Loft", Status: models.StatusFunded, TotalTokens: 10, TokensSold: 10, TokenPrice: price, Owner: "0xowner"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Canal House")
	assert.Contains(t, lines[1], "10/1000")
	assert.Contains(t, lines[2], "funded")
}

func TestPropertiesCmd_RejectsUnknownStatus(t *testing.T) {
	cmd := propertiesCmd()
	cmd.SetArgs([]string{"--status", "pending"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending")
}
