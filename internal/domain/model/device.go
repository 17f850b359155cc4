package model

// Device: устройство (эмулятор), на котором выполняются задачи.
type Device struct {
	ID          int     `json:"id"`
	DeviceName  string  `json:"deviceName"`
	DeviceToken string  `json:"deviceToken"`
	Chinac      int     `json:"chinac"`
	Region      *string `json:"region"`
	ExpireTime  *string `json:"expireTime"`
	Delete      int     `json:"delete"`
	Status      *int    `json:"status,omitempty"`
}

// Deleted сообщает, что устройство выведено из эксплуатации.
func (d Device) Deleted() bool { return d.Delete != FlagOff }

// RawLoadedDevice описывает элемент /showLoadedDevice: поля обычно строками,
// отсутствующее значение приходит строкой "null". Числовые поля бэкенд
// иногда присылает числом, поэтому они разбираются через OptString.
type RawLoadedDevice struct {
	IsChinac    OptString `json:"isChinac"`
	ExpireTime  string    `json:"expireTime"`
	ID          OptString `json:"id"`
	Region      *string   `json:"region"`
	DeviceName  string    `json:"deviceName"`
	DeviceToken string    `json:"deviceToken"`
	Status      OptString `json:"status"`
}

// Device приводит загруженное устройство к общей записи.
// Нечисловые поля дают 0, "null" даёт nil.
func (r RawLoadedDevice) Device() Device {
	status := atoiOrZero(r.Status)
	return Device{
		ID:          atoiOrZero(r.ID),
		DeviceName:  r.DeviceName,
		DeviceToken: r.DeviceToken,
		Chinac:      atoiOrZero(r.IsChinac),
		Region:      nullString(r.Region),
		ExpireTime:  nullString(&r.ExpireTime),
		Delete:      FlagOff,
		Status:      &status,
	}
}

// LoadedDevices: data ответа /showLoadedDevice.
type LoadedDevices struct {
	LoadDeviceList []RawLoadedDevice `json:"loadDeviceList"`
}

// DeviceUpdate: тело /updateDevice.
type DeviceUpdate struct {
	ID         int    `json:"id"`
	DeviceName string `json:"deviceName"`
	Delete     int    `json:"delete"`
}

func nullString(s *string) *string {
	if s == nil || *s == "null" {
		return nil
	}
	v := *s
	return &v
}

func atoiOrZero(o OptString) int {
	n, _ := o.Int()
	return n
}
