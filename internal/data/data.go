package data

// Open constructs the two data sources a backtest needs: options bars under
// optionsDir and spot bars at spotLocation (file or folder). This is the
// sole entry point the surrounding application calls into this layer.
func Open(optionsDir, spotLocation string) (*Options, *Spot, error) {
	opts, err := NewOptions(optionsDir)
	if err != nil {
		return nil, nil, err
	}
	spot, err := NewSpot(spotLocation)
	if err != nil {
		return nil, nil, err
	}
	return opts, spot, nil
}
