package cli

// Accessors for the optional config store. A missing store reads as empty.

func configValue(key string) (any, bool) {
	if configStore == nil {
		return nil, false
	}
	return configStore.Get(key)
}

func configString(key string) string {
	if configStore == nil {
		return ""
	}
	return configStore.GetString(key)
}

func configInt(key string) int {
	if configStore == nil {
		return 0
	}
	return configStore.GetInt(key)
}

func configFloat(key string) float64 {
	if configStore == nil {
		return 0
	}
	return configStore.GetFloat(key)
}

func configBool(key string) bool {
	if configStore == nil {
		return false
	}
	return configStore.GetBool(key)
}
