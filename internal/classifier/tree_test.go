package classifier

import (
	"errors"
	"testing"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/models"
)

func defaultBand() config.ComfortConfig {
	return config.Default().Comfort
}

// example builds a training example whose true temperature equals its reading.
func example(temp float64, occ int, aq float64) models.TrainingExample {
	return models.TrainingExample{Temperature: temp, Occupancy: occ, AirQuality: aq, TrueTemperature: temp}
}

func TestLabel(t *testing.T) {
	band := defaultBand()
	tests := []struct {
		temp   float64
		want   models.Setting
		wantOK bool
	}{
		{-5, "", false},
		{0, "", false},
		{0.1, models.SettingLow, true},
		{24, models.SettingLow, true},
		{24.01, models.SettingMedium, true},
		{30, models.SettingMedium, true},
		{30.5, models.SettingHigh, true},
		{40, models.SettingHigh, true},
		{40.01, "", false},
	}
	for _, tt := range tests {
		got, ok := Label(tt.temp, band)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Label(%g) = (%q, %v), want (%q, %v)", tt.temp, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTrain_Empty(t *testing.T) {
	_, err := Train(nil, defaultBand(), Options{})
	if !errors.Is(err, ErrUntrainedData) {
		t.Fatalf("expected ErrUntrainedData, got %v", err)
	}
}

func TestTrain_AllOutOfRange(t *testing.T) {
	examples := []models.TrainingExample{example(-3, 1, 500), example(45, 2, 600)}
	_, err := Train(examples, defaultBand(), Options{})
	if !errors.Is(err, ErrUntrainedData) {
		t.Fatalf("expected ErrUntrainedData, got %v", err)
	}
}

func TestTrain_DropsUnlabelled(t *testing.T) {
	examples := []models.TrainingExample{
		example(20, 1, 500),
		example(27, 1, 500),
		example(50, 1, 500),
	}
	tree, err := Train(examples, defaultBand(), Options{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if tree.Samples != 2 || tree.Dropped != 1 {
		t.Errorf("expected 2 samples and 1 dropped, got %d and %d", tree.Samples, tree.Dropped)
	}
}

func TestTrain_SingleClassIsLeaf(t *testing.T) {
	examples := []models.TrainingExample{example(20, 1, 500), example(21, 5, 900)}
	tree, err := Train(examples, defaultBand(), Options{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if !tree.Root.Leaf || tree.Root.Setting != models.SettingLow {
		t.Fatalf("expected a single Low leaf, got %+v", tree.Root)
	}
	got, err := tree.Predict(35, 9, 1900)
	if err != nil {
		t.Fatal(err)
	}
	if got != models.SettingLow {
		t.Errorf("expected Low everywhere, got %s", got)
	}
}

func TestTrain_SeparableDataFitsExactly(t *testing.T) {
	var examples []models.TrainingExample
	for i := 0; i < 60; i++ {
		temp := 15 + float64(i)*0.4
		examples = append(examples, example(temp, i%7, 400+float64(i*20)))
	}

	tree, err := Train(examples, defaultBand(), Options{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	acc, err := tree.Accuracy(examples)
	if err != nil {
		t.Fatal(err)
	}
	if acc != 1.0 {
		t.Errorf("expected training accuracy 1.0, got %g", acc)
	}

	tests := []struct {
		temp float64
		want models.Setting
	}{
		{18, models.SettingLow},
		{26, models.SettingMedium},
		{36, models.SettingHigh},
	}
	for _, tt := range tests {
		got, err := tree.Predict(tt.temp, 3, 800)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Predict(%g) = %s, want %s", tt.temp, got, tt.want)
		}
	}
}

func TestTrain_Deterministic(t *testing.T) {
	var examples []models.TrainingExample
	for i := 0; i < 40; i++ {
		examples = append(examples, models.TrainingExample{
			Temperature:     18 + float64(i%13),
			Occupancy:       i % 4,
			AirQuality:      500 + float64((i*37)%900),
			TrueTemperature: 18 + float64((i*7)%20),
		})
	}

	a, err := Train(examples, defaultBand(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Train(examples, defaultBand(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	ra, rb := a.Rules(), b.Rules()
	if len(ra) != len(rb) {
		t.Fatalf("rule count differs: %d vs %d", len(ra), len(rb))
	}
	for i := range ra {
		if ra[i] != rb[i] {
			t.Errorf("rule %d differs:\n%s\n%s", i, ra[i], rb[i])
		}
	}

	for i := 0; i < 50; i++ {
		temp := 10 + float64(i)*0.5
		first, _ := a.Predict(temp, i%5, 700)
		again, _ := a.Predict(temp, i%5, 700)
		if first != again {
			t.Fatalf("Predict not repeatable at %g: %s then %s", temp, first, again)
		}
	}
}

func TestTrain_MaxDepth(t *testing.T) {
	var examples []models.TrainingExample
	for i := 0; i < 30; i++ {
		examples = append(examples, models.TrainingExample{
			Temperature:     float64(i),
			Occupancy:       i % 3,
			AirQuality:      float64(i * 11 % 17),
			TrueTemperature: 20 + float64((i*13)%18),
		})
	}
	tree, err := Train(examples, defaultBand(), Options{MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if d := tree.Depth(); d > 1 {
		t.Errorf("expected depth <= 1, got %d", d)
	}
}

func TestMakeLeaf_TieGoesToWeakerSetting(t *testing.T) {
	n := makeLeaf(&Node{Counts: [numClasses]int{0, 2, 2}})
	if n.Setting != models.SettingMedium {
		t.Errorf("expected Medium on a Medium/High tie, got %s", n.Setting)
	}
}

func TestPredict_Untrained(t *testing.T) {
	var tree *Tree
	if _, err := tree.Predict(25, 1, 500); !errors.Is(err, ErrModelNotTrained) {
		t.Errorf("expected ErrModelNotTrained, got %v", err)
	}
	if _, err := (&Tree{}).PredictReading(models.Reading{Temperature: 25}); !errors.Is(err, ErrModelNotTrained) {
		t.Errorf("expected ErrModelNotTrained for empty tree, got %v", err)
	}
}

func TestRules(t *testing.T) {
	examples := []models.TrainingExample{example(20, 1, 500), example(28, 1, 500)}
	tree, err := Train(examples, defaultBand(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	rules := tree.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d: %v", len(rules), rules)
	}
	if tree.Root.Feature != 0 || tree.Root.Threshold != 24 {
		t.Errorf("expected split temperature <= 24, got feature %d threshold %g", tree.Root.Feature, tree.Root.Threshold)
	}
}
