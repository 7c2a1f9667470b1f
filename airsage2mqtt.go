package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/naoina/toml"
	"github.com/withmandala/go-log"

	_ "github.com/influxdata/influxdb1-client" // this is important because of the bug in go mod
	influxclient "github.com/influxdata/influxdb1-client/v2"

	"github.com/pridkett/airsage2mqtt/gas"
	"github.com/pridkett/airsage2mqtt/sensor"
)

// Where raw readings come from. Either Url (polled) or Topic (subscribed).
type tomlConfigSensor struct {
	Url      string
	Topic    string
	PollRate int
	Device   string
}

// Calibration curve override for one gas. R0 and A must both be set; B may be 0.
type tomlConfigProfile struct {
	R0 float64
	A  float64
	B  float64
}

type tomlConfigCalibration struct {
	Vcc     float64
	RL      float64
	AdcMax  float64
	CO      tomlConfigProfile
	Benzene tomlConfigProfile
	NH3     tomlConfigProfile
	Smoke   tomlConfigProfile
	LPG     tomlConfigProfile
	CH4     tomlConfigProfile
	H2      tomlConfigProfile
}

// MQTT settings for overall configuration
type tomlConfigMQTT struct {
	BrokerHost     string
	BrokerPort     int
	BrokerUsername string
	BrokerPassword string
	ClientId       string
	TopicPrefix    string
	Topic          string
}

type tomlConfigHass struct {
	Discovery       bool
	DiscoveryPrefix string
	ObjectId        string
	DeviceModel     string
	DeviceName      string
	Manufacturer    string
}

type tomlConfigInflux struct {
	Hostname    string
	Port        int
	Database    string
	Username    string
	Password    string
	Measurement string
}

type tomlConfigHTTP struct {
	Listen string
}

type tomlConfig struct {
	Sensor      tomlConfigSensor
	Calibration tomlConfigCalibration
	Mqtt        tomlConfigMQTT
	Hass        tomlConfigHass
	Influx      tomlConfigInflux
	Http        tomlConfigHTTP
}

// set up a global logger...
// see: https://stackoverflow.com/a/43827612/57626
var logger = log.New(os.Stderr)

var config tomlConfig

var MQTT_TAG_LABELS = []string{"name"}
var INFLUX_TAG_LABELS = []string{"name"}

var client mqtt.Client

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	r := client.OptionsReader()
	logger.Infof("Connected to MQTT at %s", r.Servers())
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	logger.Errorf("MQTT Connection lost: %v", err)
}

func main() {
	configFile := flag.String("config", "", "Filename with configuration")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger = log.New(os.Stderr).WithColor()
	if *debug {
		logger = logger.WithDebug()
	}

	if *configFile == "" {
		logger.Fatal("Must specify configuration file with -config FILENAME")
	}
	f, err := os.Open(*configFile)
	if err != nil {
		logger.Fatal(err)
	}
	config, err = loadConfig(f)
	f.Close()
	if err != nil {
		logger.Fatalf("Invalid configuration in %s: %v", *configFile, err)
	}

	cal, err := buildCalibration(config.Calibration)
	if err != nil {
		logger.Fatalf("Invalid calibration: %v", err)
	}

	if config.Mqtt != (tomlConfigMQTT{}) {
		if err := mqttConnect(); err != nil {
			logger.Fatal(err)
		}
	} else {
		logger.Info("No MQTT configuration found - not publishing to MQTT broker")
	}

	var influx influxclient.Client
	if config.Influx != (tomlConfigInflux{}) {
		influx, err = newInfluxClient()
		if err != nil {
			logger.Fatal(err)
		}
		defer influx.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := newBridge(cal, config.Sensor.Device, influx)

	if config.Http.Listen != "" {
		srv := &http.Server{
			Addr:              config.Http.Listen,
			Handler:           newRouter(b),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Infof("HTTP status listening on %s", config.Http.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("HTTP server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if config.Sensor.Topic != "" {
		if err := subscribeReadings(ctx, b); err != nil {
			logger.Fatal(err)
		}
	} else {
		pollReadings(ctx, b, &http.Client{Timeout: 10 * time.Second})
	}
	logger.Info("Shutting down")
}

// loadConfig decodes a TOML configuration and fills in defaults.
func loadConfig(r io.Reader) (tomlConfig, error) {
	var cfg tomlConfig
	if err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return tomlConfig{}, fmt.Errorf("decode: %w", err)
	}

	if cfg.Sensor.Url == "" && cfg.Sensor.Topic == "" {
		return tomlConfig{}, errors.New("sensor needs either url or topic")
	}
	if cfg.Sensor.Url != "" && cfg.Sensor.Topic != "" {
		return tomlConfig{}, errors.New("sensor url and topic are mutually exclusive")
	}
	if cfg.Sensor.Topic != "" && cfg.Mqtt == (tomlConfigMQTT{}) {
		return tomlConfig{}, errors.New("sensor topic requires an mqtt broker")
	}
	if cfg.Hass != (tomlConfigHass{}) && cfg.Mqtt == (tomlConfigMQTT{}) {
		return tomlConfig{}, errors.New("hass configuration found but no mqtt configuration - please configure mqtt broker")
	}
	if cfg.Sensor.PollRate < 0 {
		return tomlConfig{}, fmt.Errorf("invalid sensor pollrate %d", cfg.Sensor.PollRate)
	}

	if cfg.Sensor.PollRate == 0 {
		cfg.Sensor.PollRate = 10
	}
	if cfg.Sensor.Device == "" {
		cfg.Sensor.Device = "airsage"
	}
	if cfg.Mqtt != (tomlConfigMQTT{}) {
		if cfg.Mqtt.BrokerPort == 0 {
			cfg.Mqtt.BrokerPort = 1883
		}
		if cfg.Mqtt.TopicPrefix == "" {
			cfg.Mqtt.TopicPrefix = "airsage"
		}
		if cfg.Mqtt.Topic == "" {
			cfg.Mqtt.Topic = cfg.Sensor.Device
		}
	}
	if cfg.Hass != (tomlConfigHass{}) {
		if cfg.Hass.DiscoveryPrefix == "" {
			cfg.Hass.DiscoveryPrefix = "homeassistant"
		}
		if cfg.Hass.DeviceName == "" {
			cfg.Hass.DeviceName = cfg.Sensor.Device
		}
	}
	if cfg.Influx != (tomlConfigInflux{}) {
		if cfg.Influx.Port == 0 {
			cfg.Influx.Port = 8086
		}
		if cfg.Influx.Measurement == "" {
			cfg.Influx.Measurement = "airsage"
		}
	}
	return cfg, nil
}

// buildCalibration starts from the built-in calibration and applies the
// overrides found in the configuration.
func buildCalibration(c tomlConfigCalibration) (sensor.Calibration, error) {
	cal := sensor.DefaultCalibration()
	if c.Vcc != 0 {
		cal.Circuit.Vcc = c.Vcc
	}
	if c.RL != 0 {
		cal.Circuit.RL = c.RL
	}
	if c.AdcMax != 0 {
		cal.Circuit.ADCMax = c.AdcMax
	}

	overrides := map[gas.Pollutant]tomlConfigProfile{
		gas.CO:      c.CO,
		gas.Benzene: c.Benzene,
		gas.NH3:     c.NH3,
		gas.Smoke:   c.Smoke,
		gas.LPG:     c.LPG,
		gas.CH4:     c.CH4,
		gas.H2:      c.H2,
	}
	for p, o := range overrides {
		if o == (tomlConfigProfile{}) {
			continue
		}
		if o.R0 == 0 || o.A == 0 {
			return sensor.Calibration{}, fmt.Errorf("calibration for %s is incomplete: r0 = %v, a = %v", p, o.R0, o.A)
		}
		if o.R0 < 0 {
			logger.Warnf("Calibration for %s has R0 %v - it will always read 0 ppm", p, o.R0)
		}
		cal.Profiles[p] = sensor.Profile{R0: o.R0, A: o.A, B: o.B}
	}

	if err := cal.Validate(); err != nil {
		return sensor.Calibration{}, err
	}
	return cal, nil
}

func mqttConnect() error {
	opts := mqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", config.Mqtt.BrokerHost, config.Mqtt.BrokerPort))
	if config.Mqtt.BrokerPassword != "" && config.Mqtt.BrokerUsername != "" {
		opts.SetUsername(config.Mqtt.BrokerUsername)
		opts.SetPassword(config.Mqtt.BrokerPassword)
	}
	opts.SetClientID(config.Mqtt.ClientId)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client = mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

func newInfluxClient() (influxclient.Client, error) {
	httpConfig := influxclient.HTTPConfig{
		Addr: fmt.Sprintf("http://%s:%d", config.Influx.Hostname, config.Influx.Port),
	}
	if config.Influx.Username != "" && config.Influx.Password != "" {
		httpConfig.Username = config.Influx.Username
		httpConfig.Password = config.Influx.Password
	}

	c, err := influxclient.NewHTTPClient(httpConfig)
	if err != nil {
		return nil, fmt.Errorf("creating InfluxDB client: %w", err)
	}
	return c, nil
}

func getFieldTags(field reflect.StructField, lookupKey string, defaultLabels []string) map[string]string {
	tags := make(map[string]string)
	labellessTagsValid := true

	if tag, ok := field.Tag.Lookup(lookupKey); ok {
		tagParts := strings.Split(tag, ",")
		for i, tag := range tagParts {
			splitTag := strings.Split(tag, ":")
			if len(splitTag) == 1 {
				if labellessTagsValid {
					if i < len(defaultLabels) {
						tags[defaultLabels[i]] = splitTag[0]
					} else {
						logger.Errorf("Invalid tag - too many labelless tags: %s", tag)
					}
				} else {
					logger.Errorf("Invalid tag - labelless tags not allowed after labeled tag: %s", tag)
				}
			} else if len(splitTag) == 2 {
				labellessTagsValid = false
				tags[splitTag[0]] = splitTag[1]
			} else {
				logger.Errorf("Invalid tag - too many parts: %s", tag)
			}
		}
	}
	return tags
}

type statusField struct {
	Name  string
	Value interface{}
}

// statusFields walks the fields of a status struct and returns the ones
// tagged for lookupKey, using the tag name where there is one. Fields tagged
// "-" and nil pointers are skipped; other pointers are dereferenced.
func statusFields(status interface{}, lookupKey string, defaultLabels []string) []statusField {
	v := reflect.ValueOf(status)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	typeOfStatus := v.Type()

	var fields []statusField
	for i := 0; i < v.NumField(); i++ {
		field := typeOfStatus.Field(i)
		name := field.Name

		tags := getFieldTags(field, lookupKey, defaultLabels)
		if tagName, ok := tags["name"]; ok {
			if tagName == "-" {
				continue
			}
			name = tagName
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		fields = append(fields, statusField{Name: name, Value: fv.Interface()})
	}
	return fields
}

func publishInflux(c influxclient.Client, status *airSageStatus, measurement string) error {
	bp, err := influxclient.NewBatchPoints(influxclient.BatchPointsConfig{
		Database:  config.Influx.Database,
		Precision: "s",
	})
	if err != nil {
		return fmt.Errorf("creating batchpoints: %w", err)
	}

	values := map[string]interface{}{}
	for _, f := range statusFields(status, "influx", INFLUX_TAG_LABELS) {
		values[f.Name] = f.Value
	}
	tags := map[string]string{
		"device":   status.Device,
		"dominant": status.Dominant,
	}

	point, err := influxclient.NewPoint(measurement, tags, values, status.Time)
	if err != nil {
		return fmt.Errorf("creating point: %w", err)
	}
	bp.AddPoint(point)
	if err := c.Write(bp); err != nil {
		return fmt.Errorf("writing to InfluxDB: %w", err)
	}
	logger.Debugf("Record published to InfluxDB")
	return nil
}

func publishMQTT(status *airSageStatus) {
	for _, f := range statusFields(status, "mqtt", MQTT_TAG_LABELS) {
		topic := fmt.Sprintf("%s/%s/%s", config.Mqtt.TopicPrefix, config.Mqtt.Topic, f.Name)
		logger.Debugf("topic = %s, value = %v", topic, f.Value)
		token := client.Publish(topic, 0, false, fmt.Sprintf("%v", f.Value))
		token.Wait()
	}
}

// describe is the one line summary logged for every reading.
func describe(status *airSageStatus) string {
	return fmt.Sprintf("AQI %d (%s), dominant %s", status.AQI, status.Category, status.Dominant)
}
