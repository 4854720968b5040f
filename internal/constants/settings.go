package constants

const (
	// Config defaults
	DefaultListenAddr = "127.0.0.1:8080"
	DefaultBackupCron = "0 3 * * *"

	// Countdown defaults
	CountdownHaircutKey       = "haircut-countdown-start"
	CountdownHaircutTitle     = "Haircut"
	CountdownHaircutCycleDays = 14
	CountdownTherapyKey       = "therapy-countdown-start"
	CountdownTherapyTitle     = "Therapy"
	CountdownTherapyCycleDays = 5
	CountdownStateDirName     = "local"
)
