// Package domain models the two DWD open datasets prepared by this project
// and the artifacts the preparation pipelines emit.
//
// # CatRaRE (vector pipeline)
//
// The Catalogue of Radar-based Heavy Rainfall Events is published by the DWD
// Climate Data Center as a zipped ESRI shapefile at
// https://opendata.dwd.de/climate_environment/CDC/grids_germany/hourly/radolan/CatRaRE/.
// Versioned directories follow the pattern CatRaRE_W{level}_Eta_v{year}.{rev};
// W3 is warning level 3 ("Unwetter"). Event attributes kept for the frontend:
//
//	ID           event identifier
//	DATUM        event date as a YYYYMMDD integer, e.g. 20230715
//	ANFANG       start time, HHMM
//	ENDE         end time, HHMM
//	DAUER_H      duration in hours
//	N_MAX        maximum precipitation (mm)
//	N_SUMME      precipitation sum (mm)
//	WARNSTUFE    DWD warning level
//	FLAECHE_KM2  affected area in square kilometres
//
// The integer DATUM encoding makes "events since year Y" a plain numeric
// comparison: Y*10000 + 101 is January 1st of Y in YYYYMMDD form.
//
// # KOSTRA-DWD-2020 (raster pipeline)
//
// Statistical precipitation grids (return-period rainfall depths) distributed
// as gzipped ESRI ASCII grids named hN_D{duration}m_T{period}a.asc.gz, e.g.
// hN_D060m_T010a.asc.gz for the 60-minute, 10-year scenario. Grids carry no
// embedded CRS; DWD documents them as Gauss-Krüger zone 3 (EPSG:31467) with
// -999 marking cells without a value. Both must be assigned during conversion
// before reprojecting to WGS84 for web maps.
package domain
