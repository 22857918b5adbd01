package schema

// Grant Aerona3 register map, transcribed from the unit's Modbus
// register document. Input registers are the monitor displays (No.d0
// onward), holding registers are the installer setpoints.
//
// Scales follow the document: most temperatures are 0.1 degC steps,
// the monitor temperatures whole degrees, power 100 W steps.

// Operating mode labels for input register 10.
var OperatingModes = map[int64]string{
	0: "Off",
	1: "Heating",
	2: "Cooling",
	3: "DHW",
	4: "Auto",
}

// DHW mode labels for input register 13.
var DHWModes = map[int64]string{
	0: "Off",
	1: "Comfort",
	2: "Economy",
	3: "Boost",
}

var daysOfWeek = map[int64]string{
	0: "Monday",
	1: "Tuesday",
	2: "Wednesday",
	3: "Thursday",
	4: "Friday",
	5: "Saturday",
	6: "Sunday",
}

// Installer-facing limits (degC unless noted).
var (
	flowTempRange = Range{Min: 20, Max: 65}
	dhwTempRange  = Range{Min: 40, Max: 65}
	hysteresis    = Range{Min: 0, Max: 15}
	outdoorRange  = Range{Min: -25, Max: 45}
	minutesRange  = Range{Min: 0, Max: 240}
	secondsRange  = Range{Min: 0, Max: 600}
	percentRange  = Range{Min: 0, Max: 100}
)

var tenth = Scale{Num: 1, Den: 10}

// Aerona3Registers is the full descriptor set for one heat pump.
var Aerona3Registers = []Descriptor{
	// ---- INPUT REGISTERS (FC 4, read-only sensors) ----

	{ID: "return_water_temp", Name: "Return Water Temperature", Bank: Input, Address: 0, Kind: S16, Scale: One, Unit: "°C", Access: ReadOnly},
	{ID: "compressor_frequency", Name: "Compressor Operating Frequency", Bank: Input, Address: 1, Kind: U16, Scale: One, Unit: "Hz", Access: ReadOnly},
	{ID: "discharge_temp", Name: "Discharge Temperature", Bank: Input, Address: 2, Kind: S16, Scale: One, Unit: "°C", Access: ReadOnly},
	{ID: "power_consumption", Name: "Current Consumption Value", Bank: Input, Address: 3, Kind: U16, Scale: Scale{Num: 100, Den: 1}, Unit: "W", Access: ReadOnly},
	{ID: "fan_rotation", Name: "Fan Control Rotation", Bank: Input, Address: 4, Kind: U16, Scale: Scale{Num: 10, Den: 1}, Unit: "rpm", Access: ReadOnly},
	{ID: "defrost_temp", Name: "Defrost Temperature", Bank: Input, Address: 5, Kind: S16, Scale: One, Unit: "°C", Access: ReadOnly},
	{ID: "outdoor_air_temp", Name: "Outdoor Air Temperature", Bank: Input, Address: 6, Kind: S16, Scale: One, Unit: "°C", Access: ReadOnly},
	{ID: "water_pump_rotation", Name: "Water Pump Control Rotation", Bank: Input, Address: 7, Kind: U16, Scale: Scale{Num: 100, Den: 1}, Unit: "rpm", Access: ReadOnly},
	{ID: "suction_temp", Name: "Suction Temperature", Bank: Input, Address: 8, Kind: S16, Scale: One, Unit: "°C", Access: ReadOnly},
	{ID: "outgoing_water_temp", Name: "Outgoing Water Temperature", Bank: Input, Address: 9, Kind: S16, Scale: One, Unit: "°C", Access: ReadOnly},
	{ID: "operating_mode", Name: "Selected Operating Mode", Bank: Input, Address: 10, Kind: U16, Scale: One, Access: ReadOnly, Enum: OperatingModes},
	{ID: "room_set_temp_zone1", Name: "Room Air Set Temperature Zone 1", Bank: Input, Address: 11, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadOnly},
	{ID: "room_set_temp_zone2", Name: "Room Air Set Temperature Zone 2", Bank: Input, Address: 12, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadOnly},
	{ID: "dhw_operating_mode", Name: "Selected DHW Operating Mode", Bank: Input, Address: 13, Kind: U16, Scale: One, Access: ReadOnly, Enum: DHWModes},
	{ID: "day_of_week", Name: "Day of Week", Bank: Input, Address: 14, Kind: U16, Scale: One, Access: ReadOnly, Enum: daysOfWeek},
	{ID: "legionella_set_time", Name: "Legionella Cycle Set Time", Bank: Input, Address: 15, Kind: U16, Scale: One, Unit: "min", Access: ReadOnly},
	{ID: "dhw_tank_temp", Name: "DHW Tank Temperature", Bank: Input, Address: 16, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadOnly},
	{ID: "outdoor_air_temp_aux", Name: "Outdoor Air Temperature (Additional)", Bank: Input, Address: 17, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadOnly},
	{ID: "buffer_tank_temp", Name: "Buffer Tank Temperature", Bank: Input, Address: 18, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadOnly},
	{ID: "mix_water_temp", Name: "Mix Water Temperature", Bank: Input, Address: 19, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadOnly},
	{ID: "humidity", Name: "Humidity Sensor", Bank: Input, Address: 20, Kind: U16, Scale: One, Unit: "%", Access: ReadOnly},
	{ID: "plate_hx_temp", Name: "Plate Heat Exchanger Temperature", Bank: Input, Address: 32, Kind: S16, Scale: One, Unit: "°C", Access: ReadOnly},

	// ---- HOLDING REGISTERS (FC 3/6/16, installer setpoints) ----

	{ID: "z1_heating_fixed_flow_setpoint", Name: "Zone 1 Heating Fixed Flow Setpoint", Bank: Holding, Address: 2, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z1_heating_max_flow_temp", Name: "Zone 1 Max Flow Temperature (Heating)", Bank: Holding, Address: 3, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z1_heating_min_flow_temp", Name: "Zone 1 Min Flow Temperature (Heating)", Bank: Holding, Address: 4, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z1_heating_outdoor_min", Name: "Zone 1 Outdoor Temp at Max Flow (Heating)", Bank: Holding, Address: 5, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "z1_heating_outdoor_max", Name: "Zone 1 Outdoor Temp at Min Flow (Heating)", Bank: Holding, Address: 6, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "z2_heating_fixed_flow_setpoint", Name: "Zone 2 Heating Fixed Flow Setpoint", Bank: Holding, Address: 7, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z2_heating_max_flow_temp", Name: "Zone 2 Max Flow Temperature (Heating)", Bank: Holding, Address: 8, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z2_heating_min_flow_temp", Name: "Zone 2 Min Flow Temperature (Heating)", Bank: Holding, Address: 9, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z2_heating_outdoor_min", Name: "Zone 2 Outdoor Temp at Max Flow (Heating)", Bank: Holding, Address: 10, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "z2_heating_outdoor_max", Name: "Zone 2 Outdoor Temp at Min Flow (Heating)", Bank: Holding, Address: 11, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "z1_cooling_fixed_flow_setpoint", Name: "Zone 1 Cooling Fixed Flow Setpoint", Bank: Holding, Address: 12, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z1_cooling_max_flow_temp", Name: "Zone 1 Max Flow Temperature (Cooling)", Bank: Holding, Address: 13, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z1_cooling_min_flow_temp", Name: "Zone 1 Min Flow Temperature (Cooling)", Bank: Holding, Address: 14, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z1_cooling_outdoor_min", Name: "Zone 1 Outdoor Temp at Max Flow (Cooling)", Bank: Holding, Address: 15, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "z1_cooling_outdoor_max", Name: "Zone 1 Outdoor Temp at Min Flow (Cooling)", Bank: Holding, Address: 16, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "z2_cooling_fixed_flow_setpoint", Name: "Zone 2 Cooling Fixed Flow Setpoint", Bank: Holding, Address: 17, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z2_cooling_max_flow_temp", Name: "Zone 2 Max Flow Temperature (Cooling)", Bank: Holding, Address: 18, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z2_cooling_min_flow_temp", Name: "Zone 2 Min Flow Temperature (Cooling)", Bank: Holding, Address: 19, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "z2_cooling_outdoor_min", Name: "Zone 2 Outdoor Temp at Max Flow (Cooling)", Bank: Holding, Address: 20, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "z2_cooling_outdoor_max", Name: "Zone 2 Outdoor Temp at Min Flow (Cooling)", Bank: Holding, Address: 21, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "heating_hysteresis", Name: "Flow Setpoint Hysteresis (Heating/DHW)", Bank: Holding, Address: 22, Kind: U16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &hysteresis},
	{ID: "cooling_hysteresis", Name: "Flow Setpoint Hysteresis (Cooling)", Bank: Holding, Address: 23, Kind: U16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &hysteresis},
	{ID: "low_tariff_diff_heating", Name: "Low Tariff Differential (Heating)", Bank: Holding, Address: 24, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &hysteresis},
	{ID: "low_tariff_diff_cooling", Name: "Low Tariff Differential (Cooling)", Bank: Holding, Address: 25, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &hysteresis},
	{ID: "dhw_priority", Name: "DHW Production Priority", Bank: Holding, Address: 26, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 2}},
	{ID: "dhw_config_type", Name: "DHW Configuration Type", Bank: Holding, Address: 27, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 2}},
	{ID: "dhw_comfort_setpoint", Name: "DHW Comfort Setpoint", Bank: Holding, Address: 28, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &dhwTempRange},
	{ID: "dhw_economy_setpoint", Name: "DHW Economy Setpoint", Bank: Holding, Address: 29, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &dhwTempRange},
	{ID: "dhw_hysteresis", Name: "DHW Setpoint Hysteresis", Bank: Holding, Address: 30, Kind: U16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &hysteresis},
	{ID: "dhw_overboost_setpoint", Name: "DHW Over Boost Setpoint", Bank: Holding, Address: 31, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &dhwTempRange},
	{ID: "dhw_max_request_time", Name: "Max Time for DHW Request", Bank: Holding, Address: 32, Kind: U16, Scale: One, Unit: "min", Access: ReadWrite, Limits: &minutesRange},
	{ID: "dhw_heater_delay", Name: "DHW Heater Delay From Compressor Off", Bank: Holding, Address: 33, Kind: U16, Scale: One, Unit: "min", Access: ReadWrite, Limits: &minutesRange},
	{ID: "dhw_heater_enable_temp", Name: "Outdoor Temp to Enable DHW Heaters", Bank: Holding, Address: 34, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "dhw_heater_disable_hysteresis", Name: "Outdoor Hysteresis to Disable DHW Heaters", Bank: Holding, Address: 35, Kind: U16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &hysteresis},
	{ID: "antilegionella_setpoint", Name: "Anti-Legionella Setpoint", Bank: Holding, Address: 36, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &dhwTempRange},
	{ID: "night_mode_max_frequency", Name: "Max Frequency of Night Mode", Bank: Holding, Address: 37, Kind: U16, Scale: One, Unit: "%", Access: ReadWrite, Limits: &percentRange},
	{ID: "compressor_min_cycle_time", Name: "Min Compressor On/Off Time", Bank: Holding, Address: 38, Kind: U16, Scale: One, Unit: "s", Access: ReadWrite, Limits: &secondsRange},
	{ID: "pump_off_delay", Name: "Pump Off Delay From Compressor Off", Bank: Holding, Address: 39, Kind: U16, Scale: One, Unit: "s", Access: ReadWrite, Limits: &secondsRange},
	{ID: "compressor_on_delay", Name: "Compressor On Delay From Pump On", Bank: Holding, Address: 40, Kind: U16, Scale: One, Unit: "s", Access: ReadWrite, Limits: &secondsRange},
	{ID: "main_pump_config", Name: "Main Water Pump Configuration", Bank: Holding, Address: 41, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 2}},
	{ID: "backup_heater_function", Name: "Backup Heater Function", Bank: Holding, Address: 71, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 3}},
	{ID: "backup_heater_enable_temp", Name: "Outdoor Temp to Enable Backup Heaters", Bank: Holding, Address: 77, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &outdoorRange},
	{ID: "backup_heater_disable_hysteresis", Name: "Outdoor Hysteresis to Disable Backup Heaters", Bank: Holding, Address: 78, Kind: U16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &hysteresis},
	{ID: "freeze_protection", Name: "Freeze Protection Functions", Bank: Holding, Address: 81, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 3}},
	{ID: "ehs_function", Name: "EHS Function", Bank: Holding, Address: 84, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 2}},
	{ID: "terminal_20_21_config", Name: "Terminal 20-21 Remote Contact", Bank: Holding, Address: 91, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 2}},
	{ID: "terminal_24_25_config", Name: "Terminal 24-25 Heat/Cool Contact", Bank: Holding, Address: 92, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 2}},
	{ID: "terminal_47_config", Name: "Terminal 47 Alarm Output", Bank: Holding, Address: 93, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 2}},
	{ID: "terminal_48_pump1", Name: "Terminal 48 Pump 1", Bank: Holding, Address: 94, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 1}},
	{ID: "terminal_49_pump2", Name: "Terminal 49 Pump 2", Bank: Holding, Address: 95, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 1}},
	{ID: "terminal_50_52_dhw_valve", Name: "Terminal 50-52 DHW 3-Way Valve", Bank: Holding, Address: 96, Kind: U16, Scale: One, Access: ReadWrite, Limits: &Range{Min: 0, Max: 1}},
	{ID: "buffer_tank_heating_setpoint", Name: "Buffer Tank Setpoint (Heating)", Bank: Holding, Address: 99, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
	{ID: "buffer_tank_cooling_setpoint", Name: "Buffer Tank Setpoint (Cooling)", Bank: Holding, Address: 100, Kind: S16, Scale: tenth, Unit: "°C", Access: ReadWrite, Limits: &flowTempRange},
}
