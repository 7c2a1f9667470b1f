package main

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Types for Home Assistant MQTT Discovery
type hassMqttConfigDevice struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Name         string   `json:"name"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

type hassMqttConfig struct {
	AvailabilityTopic string               `json:"availability_topic"`
	ConfigTopic       string               `json:"-"`
	Device            hassMqttConfigDevice `json:"device"`
	DeviceClass       string               `json:"device_class,omitempty"`
	Name              string               `json:"name"`
	Qos               int                  `json:"qos"`
	StateTopic        string               `json:"state_topic"`
	UniqueId          string               `json:"unique_id"`
	Icon              string               `json:"icon,omitempty"`
	UnitOfMeasurement string               `json:"unit_of_measurement,omitempty"`
	Platform          string               `json:"-"`
}

// hassSensor is one status field as announced to Home Assistant.
type hassSensor struct {
	Topic  string
	State  string
	Config hassMqttConfig
}

// hassSensors builds the discovery config and state of every field tagged for
// Home Assistant. Tags read "name,unit,device_class" with "-" for unset parts.
func hassSensors(status interface{}, identifier string, swversion string) []hassSensor {
	v := reflect.ValueOf(status).Elem()
	typeOfStatus := v.Type()

	var sensors []hassSensor
	for i := 0; i < v.NumField(); i++ {
		field := typeOfStatus.Field(i)
		fieldName := field.Name
		mqttFieldName := fieldName

		unitOfMeasurement := ""
		deviceClass := ""

		if hassTag, ok := field.Tag.Lookup("hass"); ok {
			tagParts := strings.Split(hassTag, ",")
			if tagParts[0] == "-" || hassTag == "ignore" {
				logger.Debugf("Ignoring sending field %s to HomeAssistant", fieldName)
				continue
			}

			mqttFieldName = tagParts[0]

			if len(tagParts) > 1 && tagParts[1] != "-" {
				unitOfMeasurement = tagParts[1]
			}

			if len(tagParts) > 2 && tagParts[2] != "-" {
				deviceClass = tagParts[2]
			}
		}
		if hassFieldName, ok := field.Tag.Lookup("hass-name"); ok {
			mqttFieldName = hassFieldName
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}

		// generate the topic name
		topic := fmt.Sprintf("%s/%s/%s/%s", config.Hass.DiscoveryPrefix, "sensor", config.Hass.DeviceName, mqttFieldName)

		hassConfig := hassMqttConfig{
			AvailabilityTopic: topic + "/availability",
			ConfigTopic:       topic + "/config",
			Device: hassMqttConfigDevice{
				Identifiers:  []string{identifier},
				Manufacturer: config.Hass.Manufacturer,
				Model:        config.Hass.DeviceModel,
				Name:         config.Hass.DeviceName,
				SWVersion:    swversion,
			},
			DeviceClass:       deviceClass,
			Name:              fieldName,
			Qos:               0,
			StateTopic:        topic + "/state",
			UniqueId:          fmt.Sprintf("%s_%s", identifier, mqttFieldName),
			UnitOfMeasurement: unitOfMeasurement,
		}

		sensors = append(sensors, hassSensor{
			Topic:  topic,
			State:  fmt.Sprintf("%v", fv.Interface()),
			Config: hassConfig,
		})
	}
	return sensors
}

func publishHass(status interface{}, identifier string, swversion string) {
	for _, s := range hassSensors(status, identifier, swversion) {
		// send the availabilty message
		token := client.Publish(s.Config.AvailabilityTopic, 0, false, "online")
		token.Wait()

		// send the state message
		token = client.Publish(s.Config.StateTopic, 0, false, s.State)
		token.Wait()

		// send the config message
		configPayload, err := json.Marshal(s.Config)
		if err != nil {
			logger.Errorf("Error marshalling hassConfig to JSON: %v", err)
			continue
		}
		token = client.Publish(s.Config.ConfigTopic, 0, true, configPayload)
		token.Wait()
	}
}
