package outlier

import (
	"testing"

	"OptionSentinel/internal/model"
)

func testOIVariant() Variant {
	return Variant{
		Name:             model.VariantOI,
		MinNotional:      5_000_000,
		StockThreshold:   0.01,
		OptionThreshold:  0.05,
		SignificantDelta: 1000,
		Rules:            oiRules,
	}
}

func testVolumeVariant() Variant {
	return Variant{
		Name:            model.VariantVolume,
		MinNotional:     2_000_000,
		StockThreshold:  0.01,
		OptionThreshold: 0.05,
		UsesVolume:      true,
		MinVolume:       3000,
		MinIncreasePct:  0.30,
		MarketCapRatio:  0.00001,
		Rules:           volumeRules,
	}
}

func TestClassifyOI_AllCombinations(t *testing.T) {
	v := testOIVariant()
	tests := []struct {
		name      string
		kind      model.OptionKind
		stock     float64
		option    float64
		oiDelta   float64
		wantLabel string
		wantMatch bool
	}{
		{"call stock up option up oi up", model.Call, 0.02, 0.10, 500, "多头买 Call，看涨", true},
		{"call stock down option down oi up", model.Call, -0.02, -0.10, 500, "空头卖 Call，看跌/看不涨", true},
		{"call stock up option up oi down", model.Call, 0.02, 0.10, -500, "空头平仓 Call，回补信号，看涨", true},
		{"call stock down option down oi down", model.Call, -0.02, -0.10, -500, "多头平仓 Call，减仓，看涨减弱", true},
		{"put stock down option up oi up", model.Put, -0.02, 0.10, 500, "多头买 Put，看跌", true},
		{"put stock up option down oi up", model.Put, 0.02, -0.10, 500, "空头卖 Put，看涨/看不跌", true},
		{"put stock down option up oi down", model.Put, -0.02, 0.10, -500, "空头平仓 Put，回补，看跌信号减弱", true},
		{"put stock up option down oi down", model.Put, 0.02, -0.10, -500, "多头平仓 Put，减仓，看跌减弱", true},
		{"call directions disagree", model.Call, 0.02, -0.10, 500, "", false},
		{"put directions disagree", model.Put, -0.02, -0.10, 500, "", false},
		{"stock flat", model.Call, 0.005, 0.10, 500, "", false},
		{"option flat", model.Call, 0.02, 0.03, 500, "", false},
		{"oi unchanged", model.Call, 0.02, 0.10, 0, "", false},
	}
	for _, tt := range tests {
		d := &model.Diff{Kind: tt.kind, StockPriceChange: tt.stock, OptionPriceChange: tt.option, OIDelta: tt.oiDelta}
		sig, ok := v.Classify(d)
		if ok != tt.wantMatch {
			t.Errorf("%s: match = %v, want %v", tt.name, ok, tt.wantMatch)
			continue
		}
		if ok && sig.Label != tt.wantLabel {
			t.Errorf("%s: label = %q, want %q", tt.name, sig.Label, tt.wantLabel)
		}
	}
}

func TestClassifyOI_ThresholdBoundariesAreFlat(t *testing.T) {
	v := testOIVariant()
	// Exactly at a threshold counts as no movement in that direction.
	tests := []struct {
		name   string
		stock  float64
		option float64
	}{
		{"stock exactly at +1%", 0.01, 0.10},
		{"stock exactly at -1%", -0.01, -0.10},
		{"option exactly at +5%", 0.02, 0.05},
		{"option exactly at -5%", -0.02, -0.05},
	}
	for _, tt := range tests {
		d := &model.Diff{Kind: model.Call, StockPriceChange: tt.stock, OptionPriceChange: tt.option, OIDelta: 500}
		if sig, ok := v.Classify(d); ok {
			t.Errorf("%s: expected no signal, got %q", tt.name, sig.Label)
		}
	}
}

func TestClassifyOI_SignificantDeltaRelaxesOption(t *testing.T) {
	v := testOIVariant()

	// |delta| > 1000: an unchanged option price satisfies both directions,
	// so the stock direction decides.
	d := &model.Diff{Kind: model.Call, StockPriceChange: 0.02, OptionPriceChange: 0, OIDelta: 1500}
	sig, ok := v.Classify(d)
	if !ok || sig.Label != "多头买 Call，看涨" {
		t.Errorf("relaxed up: got (%q, %v)", sig.Label, ok)
	}

	d = &model.Diff{Kind: model.Call, StockPriceChange: -0.02, OptionPriceChange: 0, OIDelta: 1500}
	sig, ok = v.Classify(d)
	if !ok || sig.Label != "空头卖 Call，看跌/看不涨" {
		t.Errorf("relaxed down: got (%q, %v)", sig.Label, ok)
	}

	// Exactly at the relaxation cutoff the strict test still applies.
	d = &model.Diff{Kind: model.Call, StockPriceChange: 0.02, OptionPriceChange: 0, OIDelta: 1000}
	if sig, ok := v.Classify(d); ok {
		t.Errorf("delta at cutoff: expected strict matching, got %q", sig.Label)
	}

	// The stock direction test is never relaxed.
	d = &model.Diff{Kind: model.Call, StockPriceChange: 0, OptionPriceChange: 0, OIDelta: 1500}
	if sig, ok := v.Classify(d); ok {
		t.Errorf("flat stock: expected no signal, got %q", sig.Label)
	}
}

func TestClassifyVolume_AllCombinations(t *testing.T) {
	v := testVolumeVariant()
	tests := []struct {
		name      string
		kind      model.OptionKind
		stock     float64
		option    float64
		volDelta  float64
		wantLabel string
		wantMatch bool
	}{
		{"call up up", model.Call, 0.02, 0.10, 5000, "买Call，看涨", true},
		{"call up down", model.Call, 0.02, -0.10, 5000, "卖Call，看空 / 价差对冲", true},
		{"call down up", model.Call, -0.02, 0.10, 5000, "买Call 平仓 / 做波动率交易", true},
		{"call down down", model.Call, -0.02, -0.10, 5000, "卖Call，看跌", true},
		{"put down up", model.Put, -0.02, 0.10, 5000, "买Put，看跌", true},
		{"put down down", model.Put, -0.02, -0.10, 5000, "卖Put，看涨 / 对冲", true},
		{"put up up", model.Put, 0.02, 0.10, 5000, "买Put 平仓 / 做波动率交易", true},
		{"put up down", model.Put, 0.02, -0.10, 5000, "卖Put，看涨", true},
		{"shrinking volume is noise", model.Call, 0.02, 0.10, -5000, "", false},
		{"flat stock", model.Call, 0.005, 0.10, 5000, "", false},
	}
	for _, tt := range tests {
		d := &model.Diff{Kind: tt.kind, StockPriceChange: tt.stock, OptionPriceChange: tt.option, VolumeDelta: tt.volDelta}
		sig, ok := v.Classify(d)
		if ok != tt.wantMatch {
			t.Errorf("%s: match = %v, want %v", tt.name, ok, tt.wantMatch)
			continue
		}
		if ok && sig.Label != tt.wantLabel {
			t.Errorf("%s: label = %q, want %q", tt.name, sig.Label, tt.wantLabel)
		}
	}
}

func TestSignalFlags(t *testing.T) {
	// The three volatility/cover labels must not count toward trade decisions.
	notCountable := []model.Signal{
		model.SignalShortPutCover,
		model.SignalVolCloseCall,
		model.SignalVolClosePut,
	}
	for _, sig := range notCountable {
		if sig.Countable {
			t.Errorf("%q should not be countable", sig.Label)
		}
	}
	countable := 0
	for _, r := range oiRules {
		if r.Signal.Countable {
			countable++
		}
	}
	if countable != 7 {
		t.Errorf("oi taxonomy: %d countable signals, want 7", countable)
	}
	countable = 0
	for _, r := range volumeRules {
		if r.Signal.Countable {
			countable++
		}
	}
	if countable != 6 {
		t.Errorf("volume taxonomy: %d countable signals, want 6", countable)
	}
}
