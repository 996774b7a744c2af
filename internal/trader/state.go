package trader

import (
	"encoding/json"
	"os"
	"time"

	"OptionSentinel/internal/model"
)

// LoadState reads the trade state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*model.TradeState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.TradeState{Positions: map[string]*model.Position{}}, nil
		}
		return nil, err
	}
	var state model.TradeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Positions == nil {
		state.Positions = map[string]*model.Position{}
	}
	return &state, nil
}

// SaveState writes the trade state to a JSON file.
func SaveState(filePath string, state *model.TradeState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
