package nsx

// resolveChannels maps a caller's channel or electrode request onto the
// channels actually present in the file. Electrode IDs take priority over
// channel indices; with neither given, every channel is selected in file
// order. Entries that do not exist in the file are dropped silently, but
// a request that resolves to nothing at all is a SelectionError.
//
// The returned channels, electrodes, and info slices are parallel and
// preserve the request order.
func resolveChannels(channels, electrodes []int, channelsInfo []ChannelInfo) ([]int, []int, []ChannelInfo, error) {
	nChannelsInFile := len(channelsInfo)

	switch {
	case len(electrodes) > 0:
		requested := electrodes
		electrodeToChannel := make(map[int]int, nChannelsInFile)
		for c, ci := range channelsInfo {
			if _, ok := electrodeToChannel[ci.ElectrodeID]; !ok {
				electrodeToChannel[ci.ElectrodeID] = c
			}
		}
		var selChannels, selElectrodes []int
		for _, e := range requested {
			if c, ok := electrodeToChannel[e]; ok {
				selChannels = append(selChannels, c)
				selElectrodes = append(selElectrodes, e)
			}
		}
		if len(selChannels) == 0 {
			return nil, nil, nil, &SelectionError{Kind: "electrodes", Requested: requested}
		}
		channels, electrodes = selChannels, selElectrodes

	case len(channels) > 0:
		requested := channels
		var selChannels []int
		for _, c := range requested {
			if c >= 0 && c < nChannelsInFile {
				selChannels = append(selChannels, c)
			}
		}
		if len(selChannels) == 0 {
			return nil, nil, nil, &SelectionError{Kind: "channels", Requested: requested}
		}
		channels = selChannels
		electrodes = make([]int, len(channels))
		for i, c := range channels {
			electrodes[i] = channelsInfo[c].ElectrodeID
		}

	default:
		channels = make([]int, nChannelsInFile)
		electrodes = make([]int, nChannelsInFile)
		for c := range channels {
			channels[c] = c
			electrodes[c] = channelsInfo[c].ElectrodeID
		}
	}

	selInfo := make([]ChannelInfo, len(channels))
	for i, c := range channels {
		selInfo[i] = channelsInfo[c]
	}
	return channels, electrodes, selInfo, nil
}
