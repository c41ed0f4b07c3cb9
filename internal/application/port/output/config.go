package output

type ConfigPort interface {
	Get(key string) string
	MustGet(key string) string
	GetWithDefault(key string, defaultValue string) string
	GetBool(key string, defaultValue bool) (bool, error)
	GetInt(key string, defaultValue int) (int, error)
	GetPositiveInt(key string, defaultValue int) (int, error)
}
