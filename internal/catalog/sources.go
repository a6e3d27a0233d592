package catalog

// defaultSources is the built-in registry. Tier 1 covers the major metro
// portals, tier 2 the large suburban and regional ones, tiers 3-5 the
// long tail scraped daily.
var defaultSources = []Source{
	// Tier 1: major metro, scraped every 6 hours.
	{Code: "sydney_city", Name: "City of Sydney", Region: RegionNSW, Population: 248000, Tier: 1, PortalURL: "https://online2.cityofsydney.nsw.gov.au/DA/IndividualApplication", PortalType: PortalCustom, Status: StatusActive},
	{Code: "parramatta", Name: "City of Parramatta", Region: RegionNSW, Population: 260000, Tier: 1, PortalURL: "https://onlineservices.cityofparramatta.nsw.gov.au/ePathway/Production/Web/", PortalType: PortalEPathway, Status: StatusActive},
	{Code: "inner_west", Name: "Inner West Council", Region: RegionNSW, Population: 182000, Tier: 1, PortalURL: "https://www.innerwest.nsw.gov.au/develop/application-tracking", PortalType: PortalEPlanningNSW, Status: StatusActive},
	{Code: "north_sydney", Name: "North Sydney Council", Region: RegionNSW, Population: 74000, Tier: 1, PortalURL: "https://apptracking.northsydney.nsw.gov.au/", PortalType: PortalATDIS, Status: StatusActive},
	{Code: "melbourne", Name: "City of Melbourne", Region: RegionVIC, Population: 170000, Tier: 1, PortalURL: "https://www.melbourne.vic.gov.au/building-and-development/property-information", PortalType: PortalCustom, Status: StatusActive},
	{Code: "yarra", Name: "City of Yarra", Region: RegionVIC, Population: 101000, Tier: 1, PortalURL: "https://www.yarracity.vic.gov.au/planning-application-search", PortalType: PortalSpearVIC, Status: StatusActive},
	{Code: "port_phillip", Name: "City of Port Phillip", Region: RegionVIC, Population: 113000, Tier: 1, PortalURL: "https://www.portphillip.vic.gov.au/planning-applications", PortalType: PortalSpearVIC, Status: StatusActive},
	{Code: "brisbane", Name: "Brisbane City Council", Region: RegionQLD, Population: 1350000, Tier: 1, PortalURL: "https://developmenti.brisbane.qld.gov.au/", PortalType: PortalDevelopmentI, Status: StatusActive},
	{Code: "gold_coast", Name: "Gold Coast City Council", Region: RegionQLD, Population: 640000, Tier: 1, PortalURL: "https://cogc.cloud.infor.com/ePathway/epthprod/Web/", PortalType: PortalEPathway, Status: StatusActive},
	{Code: "perth", Name: "City of Perth", Region: RegionWA, Population: 30000, Tier: 1, PortalURL: "https://www.perth.wa.gov.au/develop/planning-applications", PortalType: PortalPlanWA, Status: StatusActive},
	{Code: "adelaide", Name: "City of Adelaide", Region: RegionSA, Population: 26000, Tier: 1, PortalURL: "https://plan.sa.gov.au/development_applications", PortalType: PortalPlanSA, Status: StatusActive},

	// Tier 2: large suburban and regional, scraped every 12 hours.
	{Code: "blacktown", Name: "Blacktown City Council", Region: RegionNSW, Population: 396000, Tier: 2, PortalURL: "https://www.blacktown.nsw.gov.au/Plan-build/Development-applications", PortalType: PortalTechOne, Status: StatusActive},
	{Code: "penrith", Name: "Penrith City Council", Region: RegionNSW, Population: 217000, Tier: 2, PortalURL: "https://www.penrithcity.nsw.gov.au/development-applications", PortalType: PortalMasterview, Status: StatusActive},
	{Code: "liverpool", Name: "Liverpool City Council", Region: RegionNSW, Population: 234000, Tier: 2, PortalURL: "https://eplanning.liverpool.nsw.gov.au/Pages/XC.Track/SearchApplication.aspx", PortalType: PortalMasterview, Status: StatusActive},
	{Code: "sutherland", Name: "Sutherland Shire Council", Region: RegionNSW, Population: 230000, Tier: 2, PortalURL: "https://propertydevelopment.sutherlandshire.nsw.gov.au/", PortalType: PortalATDIS, Status: StatusActive},
	{Code: "newcastle", Name: "City of Newcastle", Region: RegionNSW, Population: 168000, Tier: 2, PortalURL: "https://www.newcastle.nsw.gov.au/development", PortalType: PortalEPlanningNSW, Status: StatusActive},
	{Code: "wollongong", Name: "Wollongong City Council", Region: RegionNSW, Population: 220000, Tier: 2, PortalURL: "https://www.wollongong.nsw.gov.au/development", PortalType: PortalEPlanningNSW, Status: StatusActive},
	{Code: "monash", Name: "City of Monash", Region: RegionVIC, Population: 200000, Tier: 2, PortalURL: "https://www.monash.vic.gov.au/Planning-Development", PortalType: PortalSpearVIC, Status: StatusActive},
	{Code: "casey", Name: "City of Casey", Region: RegionVIC, Population: 365000, Tier: 2, PortalURL: "https://www.casey.vic.gov.au/planning-applications", PortalType: PortalSpearVIC, Status: StatusActive},
	{Code: "geelong", Name: "City of Greater Geelong", Region: RegionVIC, Population: 270000, Tier: 2, PortalURL: "https://www.geelongaustralia.com.au/planning/", PortalType: PortalEPathway, Status: StatusActive},
	{Code: "moreton_bay", Name: "City of Moreton Bay", Region: RegionQLD, Population: 510000, Tier: 2, PortalURL: "https://www.moretonbay.qld.gov.au/Services/Building-Development", PortalType: PortalDevelopmentI, Status: StatusActive},
	{Code: "logan", Name: "Logan City Council", Region: RegionQLD, Population: 360000, Tier: 2, PortalURL: "https://www.logan.qld.gov.au/planning-and-development", PortalType: PortalDevelopmentI, Status: StatusActive},
	{Code: "stirling", Name: "City of Stirling", Region: RegionWA, Population: 223000, Tier: 2, PortalURL: "https://www.stirling.wa.gov.au/planning-and-building", PortalType: PortalPlanWA, Status: StatusActive},
	{Code: "canberra", Name: "ACT Planning Authority", Region: RegionACT, Population: 460000, Tier: 2, PortalURL: "https://www.planning.act.gov.au/applications", PortalType: PortalCustom, Status: StatusActive},
	{Code: "hobart", Name: "City of Hobart", Region: RegionTAS, Population: 55000, Tier: 2, PortalURL: "https://www.hobartcity.com.au/Development/Planning", PortalType: PortalEPathway, Status: StatusActive},

	// Tier 3: mid-size, scraped daily.
	{Code: "georges_river", Name: "Georges River Council", Region: RegionNSW, Population: 160000, Tier: 3, PortalURL: "https://www.georgesriver.nsw.gov.au/Development", PortalType: PortalMasterview, Status: StatusActive},
	{Code: "ryde", Name: "City of Ryde", Region: RegionNSW, Population: 130000, Tier: 3, PortalURL: "https://www.ryde.nsw.gov.au/Development", PortalType: PortalMasterview, Status: StatusActive},
	{Code: "hornsby", Name: "Hornsby Shire Council", Region: RegionNSW, Population: 150000, Tier: 3, PortalURL: "https://www.hornsby.nsw.gov.au/property/build", PortalType: PortalATDIS, Status: StatusActive},
	{Code: "ballarat", Name: "City of Ballarat", Region: RegionVIC, Population: 115000, Tier: 3, PortalURL: "https://www.ballarat.vic.gov.au/planning", PortalType: PortalEPathway, Status: StatusActive},
	{Code: "bendigo", Name: "City of Greater Bendigo", Region: RegionVIC, Population: 122000, Tier: 3, PortalURL: "https://www.bendigo.vic.gov.au/Services/Building-and-planning", PortalType: PortalEPathway, Status: StatusActive},
	{Code: "ipswich", Name: "Ipswich City Council", Region: RegionQLD, Population: 250000, Tier: 3, PortalURL: "https://www.ipswich.qld.gov.au/services/planning-and-development", PortalType: PortalDevelopmentI, Status: StatusActive},
	{Code: "redland", Name: "Redland City Council", Region: RegionQLD, Population: 165000, Tier: 3, PortalURL: "https://www.redland.qld.gov.au/info/20113/development_applications", PortalType: PortalDevelopmentI, Status: StatusActive},
	{Code: "joondalup", Name: "City of Joondalup", Region: RegionWA, Population: 160000, Tier: 3, PortalURL: "https://www.joondalup.wa.gov.au/residents/planning-and-development", PortalType: PortalPlanWA, Status: StatusActive},
	{Code: "onkaparinga", Name: "City of Onkaparinga", Region: RegionSA, Population: 175000, Tier: 3, PortalURL: "https://www.onkaparingacity.com/Services/Development", PortalType: PortalPlanSA, Status: StatusActive},

	// Tier 4: smaller portals, scraped daily.
	{Code: "launceston", Name: "City of Launceston", Region: RegionTAS, Population: 68000, Tier: 4, PortalURL: "https://www.launceston.tas.gov.au/Development", PortalType: PortalEPathway, Status: StatusActive},
	{Code: "darwin", Name: "City of Darwin", Region: RegionNT, Population: 85000, Tier: 4, PortalURL: "https://www.darwin.nt.gov.au/development", PortalType: PortalCustom, Status: StatusPending},
	{Code: "albury", Name: "Albury City Council", Region: RegionNSW, Population: 56000, Tier: 4, PortalURL: "https://www.alburycity.nsw.gov.au/building-and-development", PortalType: PortalATDIS, Status: StatusActive},
	{Code: "wagga_wagga", Name: "Wagga Wagga City Council", Region: RegionNSW, Population: 67000, Tier: 4, PortalURL: "https://www.wagga.nsw.gov.au/city-of-wagga-wagga/planning-and-development", PortalType: PortalMasterview, Status: StatusActive},
	{Code: "mildura", Name: "Mildura Rural City Council", Region: RegionVIC, Population: 56000, Tier: 4, PortalURL: "https://www.mildura.vic.gov.au/Planning-Building", PortalType: PortalCivica, Status: StatusActive},
	{Code: "gladstone", Name: "Gladstone Regional Council", Region: RegionQLD, Population: 63000, Tier: 4, PortalURL: "https://www.gladstone.qld.gov.au/development-applications", PortalType: PortalTechOne, Status: StatusBroken},

	// Tier 5: long-tail rural portals, scraped daily.
	{Code: "broken_hill", Name: "Broken Hill City Council", Region: RegionNSW, Population: 17000, Tier: 5, PortalURL: "https://www.brokenhill.nsw.gov.au/Build", PortalType: PortalCivica, Status: StatusActive},
	{Code: "alice_springs", Name: "Alice Springs Town Council", Region: RegionNT, Population: 26000, Tier: 5, PortalURL: "https://alicesprings.nt.gov.au/development", PortalType: PortalCustom, Status: StatusPending},
	{Code: "king_island", Name: "King Island Council", Region: RegionTAS, Population: 1600, Tier: 5, PortalURL: "https://kingisland.tas.gov.au/planning", PortalType: PortalCustom, Status: StatusPending},
	{Code: "coober_pedy", Name: "District Council of Coober Pedy", Region: RegionSA, Population: 1700, Tier: 5, PortalURL: "https://www.cooberpedy.sa.gov.au/council/development", PortalType: PortalPlanSA, Status: StatusDisabled},
}
