package config

type AppConfig struct {
	Server ServerConfig
	Quiz   QuizConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	quizCfg, err := LoadQuiz()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Quiz:   quizCfg,
		Log:    logCfg,
	}, nil
}
