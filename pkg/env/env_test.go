package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfigIsACopy(t *testing.T) {
	conf := NewConfig()
	conf.HostBaud = 115200
	require.Equal(t, 9600, Default().HostBaud)
	require.Equal(t, 5*time.Second, conf.HeartbeatInterval)
	require.NotEmpty(t, conf.DeviceID)
}

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.LessOrEqual(t, len(id), 12)
	require.Equal(t, id, MachineID())
}

func TestLoadEnv(t *testing.T) {
	testCases := []struct {
		name   string
		vars   map[string]string
		check  func(*testing.T, *Config)
		errHas []string
	}{
		{
			name: "defaults",
			check: func(t *testing.T, conf *Config) {
				require.Equal(t, 9600, conf.HostBaud)
				require.False(t, conf.HostRaw)
				require.Equal(t, "mqtt://localhost:1883/aldl/", conf.MQTTBrokerURL)
				require.NotEmpty(t, conf.DeviceID)
			},
		},
		{
			name: "overrides",
			vars: map[string]string{
				"ALDL_DEVICE_ID":    "car1",
				"ALDL_MQTT_URL":     "",
				"ALDL_HOST_PORT":    "/dev/ttyUSB0",
				"ALDL_HOST_BAUD":    "115200",
				"ALDL_HOST_RAW":     "1",
				"ALDL_PIN_INVERTED": "true",
				"ALDL_HEARTBEAT":    "2s",
			},
			check: func(t *testing.T, conf *Config) {
				require.Equal(t, "car1", conf.DeviceID)
				require.Empty(t, conf.MQTTBrokerURL)
				require.Equal(t, "/dev/ttyUSB0", conf.HostPort)
				require.Equal(t, 115200, conf.HostBaud)
				require.True(t, conf.HostRaw)
				require.True(t, conf.PinInverted)
				require.Equal(t, 2*time.Second, conf.HeartbeatInterval)
			},
		},
		{
			name:   "invalid baud",
			vars:   map[string]string{"ALDL_HOST_BAUD": "fast"},
			errHas: []string{"ALDL_HOST_BAUD"},
		},
		{
			name:   "invalid booleans",
			vars:   map[string]string{"ALDL_PIN_INVERTED": "maybe", "ALDL_HOST_RAW": "yes please"},
			errHas: []string{"ALDL_PIN_INVERTED", "ALDL_HOST_RAW"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := Config{
				MQTTBrokerURL:     "mqtt://localhost:1883/aldl/",
				HostBaud:          9600,
				HeartbeatInterval: 5 * time.Second,
			}
			err := loadEnv(&conf, func(name string) (string, bool) {
				v, ok := tc.vars[name]
				return v, ok
			})
			if len(tc.errHas) > 0 {
				require.Error(t, err)
				for _, name := range tc.errHas {
					require.Contains(t, err.Error(), name)
				}
				return
			}
			require.NoError(t, err)
			tc.check(t, &conf)
		})
	}
}
