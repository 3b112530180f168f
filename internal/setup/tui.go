package setup

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/rsivolume/config"
	"github.com/vadiminshakov/rsivolume/internal/domain"
)

// DefaultFile where the wizard writes the generated config.
const DefaultFile = "rsivolume.gen.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// Answers values collected by the wizard, kept as typed text.
type Answers struct {
	Pair             string
	Candles          string
	RSIPeriod        string
	VolumeWindow     string
	RSIThreshold     string
	VolumeMultiplier string
	Timeframe        string
	Stoploss         string
	WALDir           string
	MetricsAddr      string
}

// DefaultAnswers prefills the wizard with the default configuration.
func DefaultAnswers() Answers {
	def := config.Default()
	return Answers{
		Pair:             "BTC_USDT",
		RSIPeriod:        strconv.Itoa(def.Strategy.RSIPeriod),
		VolumeWindow:     strconv.Itoa(def.Strategy.VolumeWindow),
		RSIThreshold:     def.Strategy.RSIThreshold.String(),
		VolumeMultiplier: def.Strategy.VolumeMultiplier.String(),
		Timeframe:        def.Host.Timeframe,
		Stoploss:         def.Host.Stoploss.String(),
		WALDir:           def.WALDir,
	}
}

// RunTUI launches the terminal configuration wizard and writes the result to filename.
func RunTUI(filename string) error {
	a := DefaultAnswers()
	var confirm bool

	// step 1: data
	clearScreen()
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Configure the RSI + volume entry signal.\n"))
	fmt.Println(stepStyle.Render("STEP 1: DATA"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pair").
				Description("BASE_QUOTE, e.g. BTC_USDT").
				Value(&a.Pair).
				Validate(func(s string) error {
					_, err := domain.ParsePair(s)
					return err
				}),
			huh.NewInput().
				Title("Candles File").
				Description("CSV or JSON candle history").
				Value(&a.Candles).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("candles file cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: signal
	clearScreen()
	fmt.Println(stepStyle.Render("STEP 2: SIGNAL"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RSI Period").
				Value(&a.RSIPeriod).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Volume Window").
				Description("Previous candles averaged for the volume baseline").
				Value(&a.VolumeWindow).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("RSI Threshold").
				Description("Entry when RSI crosses above this level").
				Value(&a.RSIThreshold).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Volume Multiplier").
				Description("Candle volume must exceed mean volume times this").
				Value(&a.VolumeMultiplier).
				Validate(validateDecimal),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: host
	clearScreen()
	fmt.Println(stepStyle.Render("STEP 3: HOST"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Timeframe").
				Description("e.g. 15m, 4h, 1d").
				Value(&a.Timeframe).
				Validate(func(s string) error {
					_, err := domain.ParseTimeframe(s)
					return err
				}),
			huh.NewInput().
				Title("Stoploss").
				Description("Negative ratio, e.g. -0.01").
				Value(&a.Stoploss).
				Validate(validateDecimal),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 4: output
	clearScreen()
	fmt.Println(stepStyle.Render("STEP 4: OUTPUT"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Signal Journal Directory").
				Value(&a.WALDir),
			huh.NewInput().
				Title("Metrics Address").
				Description("Leave empty to exit after the report, e.g. :9090").
				Value(&a.MetricsAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))
	summary := fmt.Sprintf(
		"Pair: %s\nCandles: %s\nRSI: %s crossing %s\nVolume: > %s x mean of %s\nTimeframe: %s\nStoploss: %s\n",
		a.Pair, a.Candles, a.RSIPeriod, a.RSIThreshold, a.VolumeMultiplier, a.VolumeWindow, a.Timeframe, a.Stoploss,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and run").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	data, err := Render(a)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\nConfiguration saved to %s", filename)))
	return nil
}

// Render converts answers to yaml accepted by config.Parse.
func Render(a Answers) ([]byte, error) {
	rsiPeriod, err := strconv.Atoi(a.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("incorrect rsi period %q: %w", a.RSIPeriod, err)
	}
	volumeWindow, err := strconv.Atoi(a.VolumeWindow)
	if err != nil {
		return nil, fmt.Errorf("incorrect volume window %q: %w", a.VolumeWindow, err)
	}

	// startup candles must cover the longest indicator window
	startup := max(rsiPeriod, volumeWindow)

	tmp := config.ConfigTmp{
		RSIPeriod:           &rsiPeriod,
		VolumeWindow:        &volumeWindow,
		RSIThresholdStr:     a.RSIThreshold,
		VolumeMultiplierStr: a.VolumeMultiplier,
		Timeframe:           a.Timeframe,
		StartupCandleCount:  &startup,
		StoplossStr:         a.Stoploss,
		Pairs:               []config.PairSourceTmp{{Pair: a.Pair, Candles: a.Candles}},
		WALDir:              a.WALDir,
		MetricsAddr:         a.MetricsAddr,
	}

	data, err := yaml.Marshal(tmp)
	if err != nil {
		return nil, fmt.Errorf("failed to generate yaml: %w", err)
	}
	if _, err := config.Parse(data); err != nil {
		return nil, fmt.Errorf("generated config is invalid: %w", err)
	}
	return data, nil
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RSIVOLUME CONFIG WIZARD"))
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateDecimal(s string) error {
	if _, err := decimal.NewFromString(s); err != nil {
		return fmt.Errorf("must be a valid number")
	}
	return nil
}
