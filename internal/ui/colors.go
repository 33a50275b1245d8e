package ui

// The helpers below return escape sequences from the active theme. They map
// the classic color names used at call sites onto the theme's semantic slots,
// so switching themes recolors every line of output at once.

// ColorReset ends any active styling.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed marks errors.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen marks results and success.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow marks warnings and pending states.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue marks informational labels.
func ColorBlue() string { return GetCurrentTheme().Info }

// ColorMagenta marks headings.
func ColorMagenta() string { return GetCurrentTheme().Primary }

// ColorCyan marks values echoed back to the user.
func ColorCyan() string { return GetCurrentTheme().Info }

// ColorDim marks secondary text such as hints.
func ColorDim() string { return GetCurrentTheme().Secondary }

func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
